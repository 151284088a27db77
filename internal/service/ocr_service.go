package service

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"strings"
	"time"

	"go.uber.org/zap"

	"bettracker/internal/cache"
	"bettracker/internal/llm"
)

// TicketReader reads ticket candidates from a screenshot.
type TicketReader interface {
	ReadTicketImage(ctx context.Context, imageBase64 string, bookmaker string) llm.OCRResult
}

// OCRService fronts the vision model with a result cache keyed by the image
// hash. Results with no candidates are not cached.
type OCRService struct {
	Reader   TicketReader
	Cache    cache.Store
	Settings *SystemSettingsService
	TTL      time.Duration
	Logger   *zap.Logger
}

func (s *OCRService) log() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

// ParseBase64 accepts plain base64 or a data URI.
func (s *OCRService) ParseBase64(ctx context.Context, image, bookmaker string) (llm.OCRResult, error) {
	image = stripDataURI(image)
	if image == "" {
		return llm.OCRResult{}, invalid("image", "must not be empty")
	}
	raw, err := base64.StdEncoding.DecodeString(image)
	if err != nil {
		return llm.OCRResult{}, invalid("image", "not valid base64")
	}
	return s.read(ctx, raw, image, bookmaker), nil
}

func (s *OCRService) ParseBytes(ctx context.Context, data []byte, bookmaker string) (llm.OCRResult, error) {
	if len(data) == 0 {
		return llm.OCRResult{}, invalid("file", "must not be empty")
	}
	return s.read(ctx, data, base64.StdEncoding.EncodeToString(data), bookmaker), nil
}

func (s *OCRService) read(ctx context.Context, raw []byte, b64, bookmaker string) llm.OCRResult {
	bookmaker = strings.TrimSpace(bookmaker)
	useCache := s.Cache != nil && s.Settings.IsEnabled(ctx, FeatureOCRCache, true)
	key := cacheKey(raw, bookmaker)
	if useCache {
		var cached llm.OCRResult
		hit, err := cache.GetJSON(ctx, s.Cache, key, &cached)
		if err != nil {
			s.log().Warn("ocr cache read failed", zap.Error(err))
		} else if hit {
			s.log().Debug("ocr cache hit", zap.String("key", key))
			return cached
		}
	}

	if s.Reader == nil {
		return llm.OCRResult{Tickets: []llm.TicketCandidate{}, RawText: "vision model not configured"}
	}
	result := s.Reader.ReadTicketImage(ctx, b64, bookmaker)
	if result.Tickets == nil {
		result.Tickets = []llm.TicketCandidate{}
	}
	if useCache && len(result.Tickets) > 0 {
		if err := cache.SetJSON(ctx, s.Cache, key, result, s.TTL); err != nil {
			s.log().Warn("ocr cache write failed", zap.Error(err))
		}
	}
	return result
}

func stripDataURI(image string) string {
	image = strings.TrimSpace(image)
	if i := strings.Index(image, "base64,"); i >= 0 {
		image = image[i+len("base64,"):]
	}
	return strings.TrimSpace(image)
}

func cacheKey(raw []byte, bookmaker string) string {
	sum := sha256.Sum256(raw)
	return "ocr:" + strings.ToLower(bookmaker) + ":" + hex.EncodeToString(sum[:])
}
