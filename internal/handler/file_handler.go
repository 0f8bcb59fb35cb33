package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"mikuchat/internal/pkg/errs"
	"mikuchat/internal/pkg/logx"
	"mikuchat/internal/pkg/req"
	"mikuchat/internal/pkg/resp"
)

const (
	// maxAvatarFileSize caps avatar uploads at 2 MiB.
	maxAvatarFileSize = 2 << 20

	presignDuration = 5 * time.Minute
)

// allowedAvatarTypes maps accepted image MIME types to the object key
// extension they are stored under.
var allowedAvatarTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

type AvatarPresignInput struct {
	FileType string `json:"fileType"`
	FileSize int64  `json:"fileSize"`
}

// HandleAvatarPresign hands the client a short-lived URL to upload an avatar
// image directly to object storage. The eventual public URL is returned too,
// so the client can follow up with a profile update.
func HandleAvatarPresign(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.Storage == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrConfigUnavailable))
			return
		}

		u, customErr := deps.currentUser(r)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		var input AvatarPresignInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		ext, ok := allowedAvatarTypes[input.FileType]
		if !ok {
			resp.RespondError(w, r, errs.NewError(errs.ErrFileTypeInvalid))
			return
		}

		if input.FileSize <= 0 || input.FileSize > maxAvatarFileSize {
			resp.RespondError(w, r, errs.NewError(errs.ErrFileSizeTooLarge))
			return
		}

		key := fmt.Sprintf("avatars/%d/%s%s", u.ID, uuid.NewString(), ext)

		uploadURL, err := deps.Storage.PresignUpload(r.Context(), key, input.FileType, input.FileSize, presignDuration)
		if err != nil {
			logx.Error(err, "avatar presign failed", "user_id", u.ID, "key", key)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"uploadUrl": uploadURL,
			"key":       key,
			"publicUrl": deps.Storage.PublicURL(key),
		})
	}
}
