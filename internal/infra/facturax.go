package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Factura X electronic boleta (CL39) client. The remote service emits the
// tax document and hosts the rendered PDF.

// BoletaItem is one invoice line. The API expects every numeric field as a
// string.
type BoletaItem struct {
	Line     string `json:"line"`
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
	Price    string `json:"price"`
	Amount   string `json:"amount"`
}

type BoletaParty struct {
	TaxID        string `json:"tax_id"`
	Name         string `json:"name"`
	Activity     string `json:"activity,omitempty"`
	ContactEmail string `json:"contactEmail,omitempty"`
	ContactPhone string `json:"contactPhone,omitempty"`
	Address      string `json:"address"`
	Municipality string `json:"municipality"`
	City         string `json:"city"`
}

type BoletaAmount struct {
	Net     string `json:"net"`
	Exempt  string `json:"exempt"`
	VATRate string `json:"vat_rate"`
	VAT     string `json:"vat"`
	Total   string `json:"total"`
}

type BoletaDocument struct {
	Number         string        `json:"number"`
	Currency       string        `json:"currency"`
	IssuedDate     string        `json:"issued_date"`
	IssuedDateTime string        `json:"issued_date_time"`
	PaymentTerms   string        `json:"paymentTermsDescription"`
	ServiceType    string        `json:"service_type"`
	Supplier       BoletaParty   `json:"supplier"`
	Customer       BoletaParty   `json:"customer"`
	Amount         BoletaAmount  `json:"amount"`
	Taxes          []interface{} `json:"taxes"`
	Items          []BoletaItem  `json:"items"`
}

type BoletaRequest struct {
	DocumentType string         `json:"document_type"`
	Test         bool           `json:"test"`
	Numbering    bool           `json:"numbering"`
	Document     BoletaDocument `json:"document"`
	Custom       BoletaCustom   `json:"custom"`
}

type BoletaCustom struct {
	Observaciones string `json:"Observaciones"`
	MntTotalWords string `json:"MntTotalWords"`
}

// BoletaResult is what the agent needs back: the remote document id and
// where to fetch the rendered PDF.
type BoletaResult struct {
	ID     string
	PDFURL string
}

type FacturaXClient struct {
	baseURL     string
	apiKey      string
	workspaceID string
	emitClient  *http.Client
	pdfClient   *http.Client
}

func NewFacturaXClient(baseURL, apiKey, workspaceID string) *FacturaXClient {
	return &FacturaXClient{
		baseURL:     baseURL,
		apiKey:      apiKey,
		workspaceID: workspaceID,
		// Emission is synchronous on the remote side; PDF rendering can lag.
		emitClient: &http.Client{Timeout: 15 * time.Second},
		pdfClient:  &http.Client{Timeout: 30 * time.Second},
	}
}

// EmitirBoleta POSTs the CL39 payload and extracts the document id and PDF
// URL from the loosely-shaped response. When the response carries an id but
// no pdf_plot, the canonical document URL is derived from the id.
func (c *FacturaXClient) EmitirBoleta(ctx context.Context, payload BoletaRequest) (*BoletaResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("facturax: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/generation/cl/39", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("facturax: create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("x-ax-workspace", c.workspaceID)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.emitClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("facturax: unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var apiErr struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(msg, &apiErr) == nil && apiErr.Message != "" {
			return nil, fmt.Errorf("facturax: status %d: %s", resp.StatusCode, apiErr.Message)
		}
		return nil, fmt.Errorf("facturax: status %d: %s", resp.StatusCode, string(msg))
	}

	var apiData struct {
		ID       json.Number `json:"id"`
		Document struct {
			ID      json.Number `json:"id"`
			PDFPlot string      `json:"pdf_plot"`
		} `json:"document"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiData); err != nil {
		return nil, fmt.Errorf("facturax: decode response: %w", err)
	}

	docID := apiData.ID.String()
	if docID == "" {
		docID = apiData.Document.ID.String()
	}
	if docID == "" {
		return nil, fmt.Errorf("facturax: response carried no document id")
	}

	pdfURL := apiData.Document.PDFPlot
	if pdfURL == "" {
		pdfURL = fmt.Sprintf("%s/documents/%s?format=pdf", c.baseURL, docID)
	}

	return &BoletaResult{ID: docID, PDFURL: pdfURL}, nil
}

// DescargarPDF fetches the rendered boleta PDF.
func (c *FacturaXClient) DescargarPDF(ctx context.Context, pdfURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pdfURL, nil)
	if err != nil {
		return nil, fmt.Errorf("facturax: create pdf request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("x-ax-workspace", c.workspaceID)

	resp, err := c.pdfClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("facturax: pdf fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("facturax: pdf fetch status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
