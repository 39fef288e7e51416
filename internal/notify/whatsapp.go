package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

// Sender is the outbound WhatsApp channel. The one real implementation
// talks to the Cloud API; tests plug in fakes.
type Sender interface {
	SendText(ctx context.Context, phone, text string) error
	SendTemplate(ctx context.Context, phone, templateName, lang string) error
	SendDocument(ctx context.Context, phone, caption, filename string, doc []byte) error
}

type CloudAPIConfig struct {
	BaseURL string
	Token   string
	PhoneID string
}

type cloudAPISender struct {
	cfg    CloudAPIConfig
	client *http.Client
}

func NewCloudAPISender(cfg CloudAPIConfig) Sender {
	return &cloudAPISender{
		cfg:    cfg,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *cloudAPISender) messagesURL() string {
	return fmt.Sprintf("%s/%s/messages", s.cfg.BaseURL, s.cfg.PhoneID)
}

func (s *cloudAPISender) SendText(ctx context.Context, phone, text string) error {
	return s.postJSON(ctx, s.messagesURL(), map[string]any{
		"messaging_product": "whatsapp",
		"to":                phone,
		"type":              "text",
		"text":              map[string]any{"body": text},
	})
}

func (s *cloudAPISender) SendTemplate(ctx context.Context, phone, templateName, lang string) error {
	return s.postJSON(ctx, s.messagesURL(), map[string]any{
		"messaging_product": "whatsapp",
		"to":                phone,
		"type":              "template",
		"template": map[string]any{
			"name":     templateName,
			"language": map[string]any{"code": lang},
		},
	})
}

func (s *cloudAPISender) SendDocument(ctx context.Context, phone, caption, filename string, doc []byte) error {
	mediaID, err := s.uploadMedia(ctx, filename, doc)
	if err != nil {
		return fmt.Errorf("media upload: %w", err)
	}
	return s.postJSON(ctx, s.messagesURL(), map[string]any{
		"messaging_product": "whatsapp",
		"to":                phone,
		"type":              "document",
		"document": map[string]any{
			"id":       mediaID,
			"caption":  caption,
			"filename": filename,
		},
	})
}

func (s *cloudAPISender) uploadMedia(ctx context.Context, filename string, doc []byte) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("messaging_product", "whatsapp"); err != nil {
		return "", err
	}
	if err := mw.WriteField("type", "application/pdf"); err != nil {
		return "", err
	}
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", err
	}
	if _, err := fw.Write(doc); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/%s/media", s.cfg.BaseURL, s.cfg.PhoneID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+s.cfg.Token)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("media upload status %d: %s", resp.StatusCode, body)
	}

	var out struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	return out.ID, nil
}

func (s *cloudAPISender) postJSON(ctx context.Context, url string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.cfg.Token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("whatsapp send status %d: %s", resp.StatusCode, msg)
	}
	return nil
}
