package http

import (
	"encoding/json"
	"net/http"

	"github.com/frontandrew/rental/internal/delivery/http/middleware"
	"github.com/frontandrew/rental/internal/infrastructure/storage"
	"github.com/frontandrew/rental/internal/pkg/logger"
)

// UploadHandler выдает подписанные ссылки для загрузки документов
// (сканы удостоверений, фотографии автомобилей) в объектное хранилище
type UploadHandler struct {
	presigner *storage.Presigner
	logger    logger.Logger
}

// NewUploadHandler создает новый handler
func NewUploadHandler(presigner *storage.Presigner, logger logger.Logger) *UploadHandler {
	return &UploadHandler{
		presigner: presigner,
		logger:    logger,
	}
}

// presignRequest - тело запроса на подписанную ссылку
type presignRequest struct {
	Filename string `json:"filename"`
}

// PresignUpload возвращает подписанную ссылку для загрузки файла
// POST /api/v1/uploads/presign
func (h *UploadHandler) PresignUpload(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetAuthClaims(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req presignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Filename == "" {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	upload, err := h.presigner.SignUpload(claims.OwnerID, req.Filename)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid filename")
		return
	}

	respondData(w, http.StatusOK, upload)
}
