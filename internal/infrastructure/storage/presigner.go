package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"path"
	"strconv"
	"time"

	"github.com/frontandrew/rental/internal/pkg/config"
	"github.com/google/uuid"
)

// UploadURL - подписанный адрес для прямой загрузки файла клиентом
type UploadURL struct {
	URL       string    `json:"url"`
	Key       string    `json:"key"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Presigner выдает подписанные URL для загрузки документов
// (сканы удостоверений, фото автомобилей) напрямую в хранилище,
// минуя API сервер
type Presigner struct {
	cfg config.StorageConfig
	now func() time.Time
}

// NewPresigner создает новый подписыватель загрузок
func NewPresigner(cfg config.StorageConfig) *Presigner {
	return &Presigner{
		cfg: cfg,
		now: time.Now,
	}
}

// SignUpload возвращает подписанный URL для загрузки файла владельца.
// Ключ объекта включает ID владельца: файлы разных владельцев
// не пересекаются.
func (p *Presigner) SignUpload(ownerID uuid.UUID, filename string) (*UploadURL, error) {
	if filename == "" || filename != path.Base(filename) {
		return nil, fmt.Errorf("invalid filename %q", filename)
	}

	key := fmt.Sprintf("%s/%s-%s", ownerID, uuid.New(), filename)
	expiresAt := p.now().Add(p.cfg.URLExpiry)

	signature := p.sign(key, expiresAt.Unix())

	query := url.Values{}
	query.Set("expires", strconv.FormatInt(expiresAt.Unix(), 10))
	query.Set("signature", signature)

	uploadURL := fmt.Sprintf("%s/%s/%s?%s", p.cfg.BaseURL, p.cfg.Bucket, key, query.Encode())

	return &UploadURL{
		URL:       uploadURL,
		Key:       key,
		ExpiresAt: expiresAt,
	}, nil
}

// Verify проверяет подпись и срок действия URL загрузки
func (p *Presigner) Verify(key string, expires int64, signature string) bool {
	if p.now().Unix() > expires {
		return false
	}

	expected := p.sign(key, expires)
	return hmac.Equal([]byte(expected), []byte(signature))
}

func (p *Presigner) sign(key string, expires int64) string {
	mac := hmac.New(sha256.New, []byte(p.cfg.SecretKey))
	fmt.Fprintf(mac, "%s/%s:%d", p.cfg.Bucket, key, expires)
	return hex.EncodeToString(mac.Sum(nil))
}
