package objectstore

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/catalog-sync/internal/config"
	"github.com/heartmarshall/catalog-sync/internal/domain"
)

// fakeS3 keeps objects in memory and pages listings two keys at a time.
type fakeS3 struct {
	objects     map[string][]byte
	contentType map[string]string
	deleteCalls [][]string
	failKeys    map[string]bool
	pageSize    int
}

func newFakeS3() *fakeS3 {
	return &fakeS3{
		objects:     make(map[string][]byte),
		contentType: make(map[string]string),
		failKeys:    make(map[string]bool),
		pageSize:    2,
	}
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Key)] = data
	f.contentType[aws.ToString(in.Key)] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	var matching []string
	for k := range f.objects {
		if strings.HasPrefix(k, aws.ToString(in.Prefix)) {
			matching = append(matching, k)
		}
	}
	slices.Sort(matching)

	start := 0
	if in.ContinuationToken != nil {
		start, _ = strconv.Atoi(*in.ContinuationToken)
	}
	end := min(start+f.pageSize, len(matching))

	out := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(end < len(matching))}
	for _, k := range matching[start:end] {
		out.Contents = append(out.Contents, types.Object{Key: aws.String(k)})
	}
	if end < len(matching) {
		out.NextContinuationToken = aws.String(strconv.Itoa(end))
	}
	return out, nil
}

func (f *fakeS3) DeleteObjects(_ context.Context, in *s3.DeleteObjectsInput, _ ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error) {
	var (
		call []string
		out  s3.DeleteObjectsOutput
	)
	for _, id := range in.Delete.Objects {
		k := aws.ToString(id.Key)
		call = append(call, k)
		if f.failKeys[k] {
			out.Errors = append(out.Errors, types.Error{Key: id.Key, Code: aws.String("AccessDenied"), Message: aws.String("denied")})
			continue
		}
		delete(f.objects, k)
	}
	f.deleteCalls = append(f.deleteCalls, call)
	return &out, nil
}

func TestNew_NotConfigured(t *testing.T) {
	t.Parallel()

	_, err := New(context.Background(), config.StorageConfig{Bucket: "b"}, 1000)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.ErrorIs(t, err, domain.ErrStorageNotConfigured)
}

func TestClient_Upload(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "talk.mp3")
	require.NoError(t, os.WriteFile(path, []byte("audio-bytes"), 0o600))

	fake := newFakeS3()
	c := newClient(fake, "bucket", "https://cdn.example.com/", 0)

	require.NoError(t, c.Upload(context.Background(), "ingestion/dev/t/s/l/talk.mp3", path, "audio/mpeg"))
	assert.Equal(t, []byte("audio-bytes"), fake.objects["ingestion/dev/t/s/l/talk.mp3"])
	assert.Equal(t, "audio/mpeg", fake.contentType["ingestion/dev/t/s/l/talk.mp3"])

	err := c.Upload(context.Background(), "k", filepath.Join(t.TempDir(), "missing.mp3"), "audio/mpeg")
	assert.True(t, errors.Is(err, os.ErrNotExist), "got %v", err)
}

func TestClient_ListKeys_Paginates(t *testing.T) {
	t.Parallel()

	fake := newFakeS3()
	for _, k := range []string{"p/a", "p/b", "p/c", "p/d", "p/e", "other/x"} {
		fake.objects[k] = nil
	}
	c := newClient(fake, "bucket", "", 0)

	keys, err := c.ListKeys(context.Background(), "p/")
	require.NoError(t, err)
	assert.Equal(t, []string{"p/a", "p/b", "p/c", "p/d", "p/e"}, keys)
}

func TestClient_DeleteKeys_Chunks(t *testing.T) {
	t.Parallel()

	fake := newFakeS3()
	keys := []string{"a", "b", "c", "d", "e"}
	for _, k := range keys {
		fake.objects[k] = nil
	}
	c := newClient(fake, "bucket", "", 2)

	n, err := c.DeleteKeys(context.Background(), keys)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, [][]string{{"a", "b"}, {"c", "d"}, {"e"}}, fake.deleteCalls)
	assert.Empty(t, fake.objects)
}

func TestClient_DeleteKeys_SurfacesPerKeyErrors(t *testing.T) {
	t.Parallel()

	fake := newFakeS3()
	fake.failKeys["b"] = true
	c := newClient(fake, "bucket", "", 0)

	n, err := c.DeleteKeys(context.Background(), []string{"a", "b", "c"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "delete b: AccessDenied")
	assert.Equal(t, 2, n)
	assert.Len(t, fake.deleteCalls, 1)
}

func TestClient_DeleteKeys_Empty(t *testing.T) {
	t.Parallel()

	fake := newFakeS3()
	c := newClient(fake, "bucket", "", 0)

	n, err := c.DeleteKeys(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, fake.deleteCalls)
}

func TestNewClient_ClampsChunkSize(t *testing.T) {
	t.Parallel()

	assert.Equal(t, MaxDeleteBatch, newClient(newFakeS3(), "b", "", 0).chunkSize)
	assert.Equal(t, MaxDeleteBatch, newClient(newFakeS3(), "b", "", 5000).chunkSize)
	assert.Equal(t, 10, newClient(newFakeS3(), "b", "", 10).chunkSize)
}

func TestClient_PublicURL(t *testing.T) {
	t.Parallel()

	c := newClient(newFakeS3(), "bucket", "https://cdn.example.com/", 0)
	assert.Equal(t, "https://cdn.example.com/ingestion/a.mp3", c.PublicURL("ingestion/a.mp3"))
	assert.Equal(t, "https://cdn.example.com/x", c.PublicURL("/x"))
}
