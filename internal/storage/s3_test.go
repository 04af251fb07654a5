package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	objects map[string][]byte
	gets    []string
	failGet error
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: make(map[string][]byte)}
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	key := aws.ToString(in.Key)
	f.gets = append(f.gets, key)
	if f.failGet != nil {
		return nil, f.failGet
	}
	data, ok := f.objects[key]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Key)] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) HeadObject(_ context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	if _, ok := f.objects[aws.ToString(in.Key)]; !ok {
		return nil, &types.NotFound{}
	}
	return &s3.HeadObjectOutput{}, nil
}

func TestS3SignatureStore(t *testing.T) {
	ctx := context.Background()
	client := newFakeS3()
	store := NewS3SignatureStoreWithClient(client, "bucket", "signatures")

	_, err := store.Lookup(ctx, "Asha Rao")
	assert.True(t, errors.Is(err, ErrSignatureNotFound))
	assert.Equal(t, []string{"signatures/Asha_Rao.png", "signatures/Asha_Rao.jpg", "signatures/Asha_Rao.jpeg"}, client.gets)

	has, err := store.Has(ctx, "Asha Rao")
	require.NoError(t, err)
	assert.False(t, has)

	key, err := store.Save(ctx, "Asha Rao", []byte("png"))
	require.NoError(t, err)
	assert.Equal(t, "Asha_Rao.png", key)
	assert.Contains(t, client.objects, "signatures/Asha_Rao.png")

	data, err := store.Lookup(ctx, "Asha Rao")
	require.NoError(t, err)
	assert.Equal(t, []byte("png"), data)

	has, err = store.Has(ctx, "Asha Rao")
	require.NoError(t, err)
	assert.True(t, has)
}

func TestS3SignatureStore_JPEGFallback(t *testing.T) {
	client := newFakeS3()
	client.objects["Vikram.jpeg"] = []byte("jpeg")
	store := NewS3SignatureStoreWithClient(client, "bucket", "")

	data, err := store.Lookup(context.Background(), "Vikram")
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg"), data)
}

func TestS3SignatureStore_Error(t *testing.T) {
	client := newFakeS3()
	client.failGet = errors.New("access denied")
	store := NewS3SignatureStoreWithClient(client, "bucket", "")

	_, err := store.Lookup(context.Background(), "Vikram")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrSignatureNotFound))
	assert.Contains(t, err.Error(), "access denied")
}
