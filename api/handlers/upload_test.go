package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/chaman08/buildhub-sub001/api/handlers"
	"github.com/chaman08/buildhub-sub001/databases"
	mocksdb "github.com/chaman08/buildhub-sub001/databases/mocks"
	"github.com/chaman08/buildhub-sub001/models"
)

type fakeUploader struct {
	calls      int
	accountIDs []string
	url        string
	err        error
}

func (f *fakeUploader) UploadProfilePicture(ctx context.Context, accountID string, file io.Reader) (string, error) {
	f.calls++
	f.accountIDs = append(f.accountIDs, accountID)
	return f.url, f.err
}

var pngHeader = []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a}

func newImageRequest(t *testing.T, payload []byte) *http.Request {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("image", "picture.png")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write(payload); err != nil {
		t.Fatal(err)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}

	req, err := http.NewRequest("POST", "/api/v1/user/profile-picture", &body)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return withPrincipal(req, "meera", "meera@example.com")
}

func newUploadMocks() (*mocksdb.DatabaseHelper, *mocksdb.CollectionHelper) {
	db := &mocksdb.DatabaseHelper{}
	usersColl := &mocksdb.CollectionHelper{}
	db.On("Collection", "users").Return(usersColl)
	return db, usersColl
}

func TestUpload_ProfilePictureHandler(t *testing.T) {
	db, usersColl := newUploadMocks()

	usersColl.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).
		Return(&mongo.UpdateResult{ModifiedCount: 1}, nil)

	sr := &mocksdb.SingleResultHelper{}
	sr.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.UserProfile)
		(*arg).ID = "meera"
		(*arg).ProfilePicture = "https://cdn.example.com/meera.png"
	})
	usersColl.On("FindOne", mock.Anything, mock.Anything).Return(sr)

	uploader := &fakeUploader{url: "https://cdn.example.com/meera.png"}
	u := handlers.Upload{UDB: databases.NewUserDatabase(db), Uploader: uploader}

	payload := append(pngHeader, bytes.Repeat([]byte{0x00}, 1024)...)
	rr := httptest.NewRecorder()
	http.HandlerFunc(u.ProfilePictureHandler).ServeHTTP(rr, newImageRequest(t, payload))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1, uploader.calls)
	assert.Equal(t, []string{"meera"}, uploader.accountIDs)

	var resp struct {
		URL     string             `json:"url"`
		Profile models.UserProfile `json:"profile"`
	}
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "https://cdn.example.com/meera.png", resp.URL)
	assert.Equal(t, "meera", resp.Profile.ID)

	usersColl.AssertCalled(t, "UpdateOne", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpload_ProfilePictureHandlerRejectsOversizedFile(t *testing.T) {
	db, usersColl := newUploadMocks()

	uploader := &fakeUploader{url: "https://cdn.example.com/meera.png"}
	u := handlers.Upload{UDB: databases.NewUserDatabase(db), Uploader: uploader}

	// a 6 MiB image is over the 5 MiB limit
	payload := append(pngHeader, bytes.Repeat([]byte{0x00}, 6<<20)...)
	rr := httptest.NewRecorder()
	http.HandlerFunc(u.ProfilePictureHandler).ServeHTTP(rr, newImageRequest(t, payload))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "too large")

	// nothing was stored or written
	assert.Equal(t, 0, uploader.calls)
	usersColl.AssertNotCalled(t, "UpdateOne", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpload_ProfilePictureHandlerRejectsHugeFile(t *testing.T) {
	db, usersColl := newUploadMocks()

	uploader := &fakeUploader{url: "https://cdn.example.com/meera.png"}
	u := handlers.Upload{UDB: databases.NewUserDatabase(db), Uploader: uploader}

	// way past the body cap; the error must still say "too large"
	payload := append(pngHeader, bytes.Repeat([]byte{0x00}, 11<<20)...)
	rr := httptest.NewRecorder()
	http.HandlerFunc(u.ProfilePictureHandler).ServeHTTP(rr, newImageRequest(t, payload))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "too large")

	assert.Equal(t, 0, uploader.calls)
	usersColl.AssertNotCalled(t, "UpdateOne", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpload_ProfilePictureHandlerRejectsNonImage(t *testing.T) {
	db, usersColl := newUploadMocks()

	uploader := &fakeUploader{url: "https://cdn.example.com/meera.png"}
	u := handlers.Upload{UDB: databases.NewUserDatabase(db), Uploader: uploader}

	payload := []byte("%PDF-1.4 definitely not a picture")
	rr := httptest.NewRecorder()
	http.HandlerFunc(u.ProfilePictureHandler).ServeHTTP(rr, newImageRequest(t, payload))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "not an image")

	assert.Equal(t, 0, uploader.calls)
	usersColl.AssertNotCalled(t, "UpdateOne", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpload_ProfilePictureHandlerRequiresSession(t *testing.T) {
	db, _ := newUploadMocks()

	uploader := &fakeUploader{}
	u := handlers.Upload{UDB: databases.NewUserDatabase(db), Uploader: uploader}

	req, err := http.NewRequest("POST", "/api/v1/user/profile-picture", nil)
	if err != nil {
		t.Fatal(err)
	}

	rr := httptest.NewRecorder()
	http.HandlerFunc(u.ProfilePictureHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, 0, uploader.calls)
}
