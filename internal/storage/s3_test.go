package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	put    *s3.PutObjectInput
	body   string
	delete *s3.DeleteObjectInput
	err    error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.put = in
	b, _ := io.ReadAll(in.Body)
	f.body = string(b)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.delete = in
	return &s3.DeleteObjectOutput{}, nil
}

func TestUploadFile(t *testing.T) {
	client := &fakeS3{}
	st := NewS3Storage(client, "docs")

	key, err := st.UploadFile(context.Background(), "profiles/u1/abc-card.pdf", strings.NewReader("%PDF"), 4, "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "profiles/u1/abc-card.pdf", key)

	require.NotNil(t, client.put)
	assert.Equal(t, "docs", aws.ToString(client.put.Bucket))
	assert.Equal(t, key, aws.ToString(client.put.Key))
	assert.Equal(t, "application/pdf", aws.ToString(client.put.ContentType))
	assert.Equal(t, int64(4), aws.ToInt64(client.put.ContentLength))
	assert.Equal(t, "%PDF", client.body)
}

func TestStorageErrorsAreWrapped(t *testing.T) {
	boom := errors.New("boom")
	st := NewS3Storage(&fakeS3{err: boom}, "docs")

	_, err := st.UploadFile(context.Background(), "k", strings.NewReader(""), 0, "image/png")
	assert.ErrorIs(t, err, boom)

	err = st.DeleteFile(context.Background(), "k")
	assert.ErrorIs(t, err, boom)
}
