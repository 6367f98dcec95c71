package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	cldapi "github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/chaman08/buildhub-sub001/api"
	"github.com/chaman08/buildhub-sub001/config"
	"github.com/chaman08/buildhub-sub001/databases"
)

// profile pictures may not exceed 5 MiB
const maxProfilePictureBytes = 5 << 20

// ImageUploader stores profile picture bytes under a per-account key and
// returns a retrievable URL. Re-uploads overwrite the previous picture.
type ImageUploader interface {
	UploadProfilePicture(ctx context.Context, accountID string, file io.Reader) (string, error)
}

// CloudinaryUploader implements ImageUploader against cloudinary
type CloudinaryUploader struct {
	Cld *cloudinary.Cloudinary
}

// NewCloudinaryUploader reads CLOUDINARY_URL from the environment
func NewCloudinaryUploader() (*CloudinaryUploader, error) {
	cld, err := cloudinary.New()
	if err != nil {
		return nil, err
	}
	return &CloudinaryUploader{Cld: cld}, nil
}

// UploadProfilePicture uploads under a fixed per-account public ID so a new
// picture replaces the old one
func (c *CloudinaryUploader) UploadProfilePicture(ctx context.Context, accountID string, file io.Reader) (string, error) {
	resp, err := c.Cld.Upload.Upload(ctx, file, uploader.UploadParams{
		PublicID:  fmt.Sprintf("buildhub/profile_pictures/%s", accountID),
		Overwrite: cldapi.Bool(true),
	})
	if err != nil {
		return "", err
	}
	return resp.SecureURL, nil
}

// Upload exported for testing purposes
type Upload struct {
	UDB      databases.UserDatabase
	Uploader ImageUploader
}

// ProfilePictureHandler validates and stores a new profile picture for the
// caller, then writes the resulting URL into the profile document. Validation
// failures never reach the blob store.
func (u Upload) ProfilePictureHandler(w http.ResponseWriter, r *http.Request) {
	principal := api.Principal(r)
	if principal == nil {
		config.ErrorStatus("no active session", http.StatusUnauthorized, w, fmt.Errorf("missing principal"))
		return
	}

	// reject clearly oversized requests before parsing the body, so the caller
	// always sees the "too large" error rather than a truncated body failure.
	// 2x the picture limit leaves headroom for multipart framing.
	if r.ContentLength > 2*maxProfilePictureBytes {
		config.ErrorStatus("invalid image", http.StatusBadRequest, w,
			fmt.Errorf("too large: request body is %d bytes, limit is %d", r.ContentLength, maxProfilePictureBytes))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, 2*maxProfilePictureBytes)

	file, header, err := r.FormFile("image")
	if err != nil {
		config.ErrorStatus("failed to read image from request", http.StatusBadRequest, w, err)
		return
	}
	defer file.Close()

	if err := validateProfileImage(header, file); err != nil {
		config.ErrorStatus("invalid image", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	url, err := u.Uploader.UploadProfilePicture(ctx, principal.ID(), file)
	if err != nil {
		config.ErrorStatus("failed to upload image", http.StatusInternalServerError, w, err)
		return
	}

	now := primitive.NewDateTimeFromTime(time.Now())
	if _, err := u.UDB.UpdateOne(ctx,
		bson.M{"_id": principal.ID()},
		bson.M{"$set": bson.M{"profilePicture": url, "updatedAt": now}},
	); err != nil {
		config.ErrorStatus("failed to update profile", http.StatusInternalServerError, w, err)
		return
	}

	profile, err := u.UDB.FindOne(ctx, bson.M{"_id": principal.ID()})
	if err != nil {
		config.ErrorStatus("failed to get user by ID", http.StatusNotFound, w, err)
		return
	}

	zap.S().Infow("profile picture updated", "accountID", principal.ID())

	b, err := json.Marshal(map[string]interface{}{
		"url":     url,
		"profile": profile,
	})
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// validateProfileImage rejects files that are too large or not an image. The
// content type is sniffed from the first bytes rather than trusted from the
// client header. The file is rewound before returning.
func validateProfileImage(header *multipart.FileHeader, file multipart.File) error {
	if header.Size > maxProfilePictureBytes {
		return fmt.Errorf("too large: file is %d bytes, limit is %d", header.Size, maxProfilePictureBytes)
	}

	buf := make([]byte, 512)
	n, err := file.Read(buf)
	if err != nil && err != io.EOF {
		return fmt.Errorf("failed to read file: %v", err)
	}
	contentType := http.DetectContentType(buf[:n])
	if len(contentType) < 6 || contentType[:6] != "image/" {
		return fmt.Errorf("not an image: detected %s", contentType)
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("failed to rewind file: %v", err)
	}
	return nil
}
