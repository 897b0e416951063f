package remote

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type object struct {
	data     []byte
	meta     map[string]string
	modified time.Time
}

// fakeS3 is an in-memory bucket. pageSize forces ListObjectsV2 pagination.
type fakeS3 struct {
	mu       sync.Mutex
	objects  map[string]object
	pageSize int
	headErr  error
	failAll  error
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string]object{}, pageSize: 2}
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.failAll != nil {
		return nil, f.failAll
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[aws.ToString(in.Key)] = object{data: data, meta: in.Metadata, modified: time.Now()}
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if f.failAll != nil {
		return nil, f.failAll
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	obj, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{Message: aws.String("missing")}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(obj.data)), Metadata: obj.meta}, nil
}

func (f *fakeS3) ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	if f.failAll != nil {
		return nil, f.failAll
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	var keys []string
	for k := range f.objects {
		if strings.HasPrefix(k, aws.ToString(in.Prefix)) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	start := 0
	if in.ContinuationToken != nil {
		_, _ = fmt.Sscanf(*in.ContinuationToken, "%d", &start)
	}
	end := min(start+f.pageSize, len(keys))

	out := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(end < len(keys))}
	for _, k := range keys[start:end] {
		obj := f.objects[k]
		out.Contents = append(out.Contents, types.Object{
			Key:          aws.String(k),
			Size:         aws.Int64(int64(len(obj.data))),
			LastModified: aws.Time(obj.modified),
		})
	}
	if end < len(keys) {
		out.NextContinuationToken = aws.String(fmt.Sprint(end))
	}
	return out, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	if f.failAll != nil {
		return nil, f.failAll
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeS3) HeadBucket(ctx context.Context, in *s3.HeadBucketInput, _ ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	if f.headErr != nil {
		return nil, f.headErr
	}
	return &s3.HeadBucketOutput{}, nil
}

func testStore(f *fakeS3) *S3Store {
	return newS3Store(f, S3Options{Bucket: "backups", Prefix: "ev/", Timeout: time.Second})
}

func TestS3Store_RoundTrip(t *testing.T) {
	f := newFakeS3()
	s := testStore(f)
	ctx := context.Background()

	require.NoError(t, s.WriteFile(ctx, "a.json", []byte(`{"a":1}`)))
	require.Contains(t, f.objects, "ev/a.json")
	assert.Equal(t, Checksum([]byte(`{"a":1}`)), f.objects["ev/a.json"].meta[checksumKey])

	got, err := s.ReadFile(ctx, "a.json")
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(got))

	require.NoError(t, s.Delete(ctx, "a.json"))
	_, err = s.ReadFile(ctx, "a.json")
	require.ErrorIs(t, err, fs.ErrNotExist)
}

func TestS3Store_ChecksumMismatch(t *testing.T) {
	f := newFakeS3()
	s := testStore(f)
	ctx := context.Background()

	require.NoError(t, s.WriteFile(ctx, "a.json", []byte("original")))
	obj := f.objects["ev/a.json"]
	obj.data = []byte("tampered")
	f.objects["ev/a.json"] = obj

	_, err := s.ReadFile(ctx, "a.json")
	require.ErrorIs(t, err, ErrChecksumMismatch)
}

func TestS3Store_ListDirectory_PaginatesAndSkipsNested(t *testing.T) {
	f := newFakeS3()
	s := testStore(f)
	ctx := context.Background()

	for _, name := range []string{"c.json", "a.json", "b.json", "nested/x.json"} {
		require.NoError(t, s.WriteFile(ctx, name, []byte(name)))
	}
	f.objects["other/z.json"] = object{data: []byte("z")}

	list, err := s.ListDirectory(ctx, "")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "a.json", list[0].Name)
	assert.Equal(t, "c.json", list[2].Path)
	assert.Equal(t, int64(6), list[1].Size)

	nested, err := s.ListDirectory(ctx, "nested")
	require.NoError(t, err)
	require.Len(t, nested, 1)
	assert.Equal(t, "nested/x.json", nested[0].Path)
}

func TestS3Store_CheckAvailability(t *testing.T) {
	f := newFakeS3()
	s := testStore(f)
	ctx := context.Background()

	require.NoError(t, s.CheckAvailability(ctx))

	f.headErr = &smithy.GenericAPIError{Code: "NotFound", Message: "no such bucket"}
	err := s.CheckAvailability(ctx)
	require.ErrorIs(t, err, ErrRemoteUnavailable)
	assert.Contains(t, err.Error(), "NotFound")

	f.headErr = &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}
	require.ErrorIs(t, s.CheckAvailability(ctx), ErrNetworkUnavailable)

	f.headErr = errors.New("odd failure")
	require.ErrorIs(t, s.CheckAvailability(ctx), ErrRemoteUnavailable)
}

func TestS3Store_NetworkErrorsAreClassified(t *testing.T) {
	f := newFakeS3()
	f.failAll = &net.DNSError{Err: "no such host", Name: "s3.example"}
	s := testStore(f)
	ctx := context.Background()

	require.ErrorIs(t, s.WriteFile(ctx, "a.json", nil), ErrNetworkUnavailable)
	_, err := s.ReadFile(ctx, "a.json")
	require.ErrorIs(t, err, ErrNetworkUnavailable)
	_, err = s.ListDirectory(ctx, "")
	require.ErrorIs(t, err, ErrNetworkUnavailable)
	require.ErrorIs(t, s.Delete(ctx, "a.json"), ErrNetworkUnavailable)
}

func TestS3Store_KeyCannotEscapePrefix(t *testing.T) {
	s := testStore(newFakeS3())
	assert.Equal(t, "ev/x.json", s.key("../../x.json"))
	assert.Equal(t, "ev/d/x.json", s.key("d/x.json"))
}

func TestNewS3Store_Seams(t *testing.T) {
	origLoad := loadDefaultAWSConfig
	origNew := newS3ClientFromConfig
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNew
	})

	var gotRegion string
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		gotRegion = lo.Region
		require.NotNil(t, lo.Credentials, "static credentials expected")
		return aws.Config{Region: lo.Region}, nil
	}
	var gotOpts s3.Options
	fake := newFakeS3()
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) s3API {
		for _, fn := range optFns {
			fn(&gotOpts)
		}
		return fake
	}

	s, err := NewS3Store(context.Background(), S3Options{
		Bucket: "b", Region: "eu-central-1", BaseEndpoint: "http://127.0.0.1:9000",
		UsePathStyle: true, AccessKey: "minioadmin", SecretKey: "minioadmin",
	})
	require.NoError(t, err)
	assert.Equal(t, "eu-central-1", gotRegion)
	assert.Equal(t, "http://127.0.0.1:9000", aws.ToString(gotOpts.BaseEndpoint))
	assert.True(t, gotOpts.UsePathStyle)
	assert.Same(t, fake, s.client.(*fakeS3))

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("bad profile")
	}
	_, err = NewS3Store(context.Background(), S3Options{Bucket: "b"})
	require.ErrorContains(t, err, "bad profile")

	_, err = NewS3Store(context.Background(), S3Options{})
	require.ErrorIs(t, err, ErrRemoteUnavailable)
}
