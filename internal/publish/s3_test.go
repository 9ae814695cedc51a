package publish

import (
	"context"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	objects map[string][]byte
}

func (f *fakeS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	body, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(params.Key)] = body
	return &s3.PutObjectOutput{}, nil
}

func TestMirrorDir(t *testing.T) {
	dir := t.TempDir()
	writeArtifact(t, dir, "fedlogin_1.2.3_linux_amd64.tar.gz", "tarball")
	writeArtifact(t, dir, "SHA256SUMS", "sums")

	fake := &fakeS3{objects: make(map[string][]byte)}
	m := &S3Mirror{Bucket: "releases", Prefix: "fedlogin/1.2.3", Client: fake}

	require.NoError(t, m.MirrorDir(context.Background(), dir))

	assert.Equal(t, []byte("tarball"), fake.objects["fedlogin/1.2.3/fedlogin_1.2.3_linux_amd64.tar.gz"])
	assert.Equal(t, []byte("sums"), fake.objects["fedlogin/1.2.3/SHA256SUMS"])
}
