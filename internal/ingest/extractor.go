// Package ingest - serbest metinden yapılandırılmış kayıt çıkarımı.
//
// Metin analizi dışarıdaki yapay zeka servisine bırakılır; bu paket sadece
// çıkan yapılandırılmış sonucu doğrular ve deftere işler. Servis ne zaman
// hata verirse versin sonuç 'unknown' tipine düşer, istek patlamaz.
package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"time"
)

const (
	TypeProduction = "production"
	TypeAdvance    = "advance"
	TypeExpense    = "expense"
	TypeUnknown    = "unknown"
)

// ExtractData - servisten dönen ham alanlar. Hangi alanların dolu olduğu
// tipe bağlıdır; eksik alanlar handler katmanında varsayılana bağlanır.
type ExtractData struct {
	WorkerName   string  `json:"worker_name"`
	TaskName     string  `json:"task_name"`
	Quantity     float64 `json:"quantity"`
	WorkerRate   float64 `json:"worker_rate"`
	SupplierRate float64 `json:"supplier_rate"`
	Amount       float64 `json:"amount"`
	Category     string  `json:"category"`
	Note         string  `json:"note"`
}

type ExtractResult struct {
	Type string      `json:"type"`
	Data ExtractData `json:"data"`
}

type Extractor interface {
	Extract(ctx context.Context, text string) (*ExtractResult, error)
}

// GeminiExtractor - generateContent uçlu bir modele JSON şemalı istek atar.
type GeminiExtractor struct {
	apiURL     string
	apiKey     string
	httpClient *http.Client
}

func NewGeminiExtractor(apiURL, apiKey string) *GeminiExtractor {
	return &GeminiExtractor{
		apiURL: apiURL,
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

const extractPrompt = `Aşağıdaki metin bir dikiş atölyesinin günlük defterinden alınmıştır. Metni analiz et ve JSON olarak yapılandır.
Kurallar:
1. Metin bir çalışanın üretiminden bahsediyorsa (örn: "Hanan 50 yaka dikti, tanesi 0.1") tip 'production' olur.
2. Metin bir çalışana verilen avanstan bahsediyorsa (örn: "Samira'ya 100 avans") tip 'advance' olur.
3. Metin genel bir giderden bahsediyorsa (örn: "elektrik faturası 200") tip 'expense' olur.
4. Üretimde 'worker_name', 'task_name', 'quantity', 'worker_rate', 'supplier_rate' alanlarını çıkar.
5. Avans ve giderde 'amount' ve 'note' alanlarını çıkar, giderde ayrıca 'category'.
6. Hiçbirine uymuyorsa tip 'unknown' olur.
Metin: `

type generateContentRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	ResponseMimeType string `json:"responseMimeType"`
}

type generateContentResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Extract - her türlü hata (ağ, durum kodu, bozuk JSON) sessizce 'unknown'
// sonucuna düşer; çağıran taraf hata dallanması yapmak zorunda kalmaz.
func (g *GeminiExtractor) Extract(ctx context.Context, text string) (*ExtractResult, error) {
	unknown := &ExtractResult{Type: TypeUnknown}

	reqBody := generateContentRequest{
		Contents: []content{{Parts: []part{{Text: extractPrompt + `"` + text + `"`}}}},
		GenerationConfig: generationConfig{
			ResponseMimeType: "application/json",
		},
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return unknown, nil
	}

	req, err := http.NewRequestWithContext(ctx, "POST", g.apiURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return unknown, nil
	}
	req.Header.Set("Content-Type", "application/json")
	if g.apiKey != "" {
		req.Header.Set("x-goog-api-key", g.apiKey)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		log.Printf("[WARN] AI çıkarım isteği başarısız: %v", err)
		return unknown, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("[WARN] AI çıkarım servisi %d döndü", resp.StatusCode)
		return unknown, nil
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return unknown, nil
	}

	var gcResp generateContentResponse
	if err := json.Unmarshal(respBody, &gcResp); err != nil {
		return unknown, nil
	}
	if len(gcResp.Candidates) == 0 || len(gcResp.Candidates[0].Content.Parts) == 0 {
		return unknown, nil
	}

	var result ExtractResult
	if err := json.Unmarshal([]byte(gcResp.Candidates[0].Content.Parts[0].Text), &result); err != nil {
		log.Printf("[WARN] AI çıkarım yanıtı çözümlenemedi: %v", err)
		return unknown, nil
	}

	switch result.Type {
	case TypeProduction, TypeAdvance, TypeExpense:
		return &result, nil
	default:
		return unknown, nil
	}
}
