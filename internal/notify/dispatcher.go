package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/viknesh-web/grocery-management-api-sub001/internal/domain/customer"
	"github.com/viknesh-web/grocery-management-api-sub001/internal/domain/job"
	"github.com/viknesh-web/grocery-management-api-sub001/internal/domain/product"
	"github.com/viknesh-web/grocery-management-api-sub001/internal/httpx"
	"github.com/viknesh-web/grocery-management-api-sub001/internal/util"
)

type CustomerSource interface {
	ListActive(ctx context.Context) ([]customer.Customer, error)
	ByIDs(ctx context.Context, ids []int64) ([]customer.Customer, error)
}

type ProductSource interface {
	ActiveForPriceList(ctx context.Context) ([]product.Product, error)
}

type Queue interface {
	Enqueue(ctx context.Context, jobType string, payload any) (job.Job, error)
}

// SendRequest describes one broadcast. Exactly one of CustomerIDs or
// AllActive selects the recipients, and exactly one of Message or
// Template carries the content.
type SendRequest struct {
	CustomerIDs  []int64 `json:"customer_ids"`
	AllActive    bool    `json:"all_active"`
	Message      string  `json:"message"`
	Template     string  `json:"template"`
	TemplateLang string  `json:"template_lang"`
	AttachPDF    bool    `json:"attach_pdf"`
	// CustomPDF carries a caller-supplied document (base64 in JSON)
	// instead of the generated price list.
	CustomPDF []byte `json:"custom_pdf,omitempty"`
	Async     bool   `json:"async"`
}

// SendPayload is the per-recipient job payload for async sends.
type SendPayload struct {
	Phone        string `json:"phone"`
	Name         string `json:"name"`
	Message      string `json:"message,omitempty"`
	Template     string `json:"template,omitempty"`
	TemplateLang string `json:"template_lang,omitempty"`
	AttachPDF    bool   `json:"attach_pdf"`
	CustomPDF    []byte `json:"custom_pdf,omitempty"`
}

type SendResult struct {
	Phone string `json:"phone"`
	Name  string `json:"name"`
	Sent  bool   `json:"sent"`
	Error string `json:"error,omitempty"`
}

type SendSummary struct {
	Total  int          `json:"total"`
	Sent   int          `json:"sent"`
	Failed int          `json:"failed"`
	Queued int          `json:"queued"`
	Detail []SendResult `json:"detail,omitempty"`
}

type Dispatcher struct {
	customers CustomerSource
	products  ProductSource
	sender    Sender
	queue     Queue
	now       func() time.Time
}

func NewDispatcher(customers CustomerSource, products ProductSource, sender Sender, queue Queue) *Dispatcher {
	return &Dispatcher{
		customers: customers,
		products:  products,
		sender:    sender,
		queue:     queue,
		now:       time.Now,
	}
}

func (d *Dispatcher) validate(req SendRequest) error {
	if req.AllActive == (len(req.CustomerIDs) > 0) {
		return &httpx.ValidationError{Msg: "select either specific customers or all active customers"}
	}
	if (req.Message == "") == (req.Template == "") {
		return &httpx.ValidationError{Msg: "provide either a message or a template name"}
	}
	if req.AttachPDF && len(req.CustomPDF) > 0 {
		return &httpx.ValidationError{Msg: "attach either the generated price list or a custom pdf, not both"}
	}
	return nil
}

func (d *Dispatcher) recipients(ctx context.Context, req SendRequest) ([]customer.Customer, error) {
	if req.AllActive {
		return d.customers.ListActive(ctx)
	}
	found, err := d.customers.ByIDs(ctx, req.CustomerIDs)
	if err != nil {
		return nil, err
	}
	if len(found) != len(req.CustomerIDs) {
		return nil, &httpx.ValidationError{Msg: "one or more customers not found"}
	}
	return found, nil
}

// Send delivers the broadcast. In async mode it enqueues one job per
// recipient; in sync mode it sends inline and aggregates per-recipient
// results without aborting on individual failures.
func (d *Dispatcher) Send(ctx context.Context, req SendRequest) (SendSummary, error) {
	if err := d.validate(req); err != nil {
		return SendSummary{}, err
	}
	recipients, err := d.recipients(ctx, req)
	if err != nil {
		return SendSummary{}, err
	}
	if len(recipients) == 0 {
		return SendSummary{}, &httpx.BusinessError{Msg: "no recipients to notify"}
	}

	summary := SendSummary{Total: len(recipients)}

	if req.Async {
		for _, c := range recipients {
			phone, err := util.NormalizePhone(c.Phone)
			if err != nil {
				summary.Failed++
				summary.Detail = append(summary.Detail, SendResult{
					Phone: c.Phone, Name: c.Name, Error: "invalid phone number on record",
				})
				continue
			}
			payload := SendPayload{
				Phone:        phone,
				Name:         c.Name,
				Message:      req.Message,
				Template:     req.Template,
				TemplateLang: req.TemplateLang,
				AttachPDF:    req.AttachPDF,
				CustomPDF:    req.CustomPDF,
			}
			if _, err := d.queue.Enqueue(ctx, job.TypeWhatsAppSend, payload); err != nil {
				return summary, err
			}
			summary.Queued++
		}
		return summary, nil
	}

	doc := req.CustomPDF
	if req.AttachPDF {
		doc, err = d.buildPriceList(ctx)
		if err != nil {
			return summary, err
		}
	}

	for _, c := range recipients {
		result := SendResult{Phone: c.Phone, Name: c.Name, Sent: true}
		phone, err := util.NormalizePhone(c.Phone)
		if err != nil {
			// Never hand a malformed number to the Cloud API; report
			// it like any other per-recipient failure.
			result.Sent = false
			result.Error = "invalid phone number on record"
			summary.Failed++
			summary.Detail = append(summary.Detail, result)
			continue
		}
		if err := d.deliver(ctx, SendPayload{
			Phone:        phone,
			Name:         c.Name,
			Message:      req.Message,
			Template:     req.Template,
			TemplateLang: req.TemplateLang,
			AttachPDF:    req.AttachPDF,
		}, doc); err != nil {
			result.Sent = false
			result.Error = err.Error()
			summary.Failed++
		} else {
			summary.Sent++
		}
		summary.Detail = append(summary.Detail, result)
	}
	return summary, nil
}

// HandleJob is the worker handler for whatsapp_send jobs.
func (d *Dispatcher) HandleJob(ctx context.Context, j job.Job) error {
	var payload SendPayload
	if err := json.Unmarshal(j.Payload, &payload); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	doc := payload.CustomPDF
	if payload.AttachPDF {
		var err error
		doc, err = d.buildPriceList(ctx)
		if err != nil {
			return err
		}
	}
	return d.deliver(ctx, payload, doc)
}

func (d *Dispatcher) deliver(ctx context.Context, p SendPayload, doc []byte) error {
	if p.Template != "" {
		lang := p.TemplateLang
		if lang == "" {
			lang = "en"
		}
		if err := d.sender.SendTemplate(ctx, p.Phone, p.Template, lang); err != nil {
			return err
		}
	} else if err := d.sender.SendText(ctx, p.Phone, p.Message); err != nil {
		return err
	}
	if doc != nil {
		filename, caption := "attachment.pdf", ""
		if p.AttachPDF {
			filename = "price-list-" + d.now().Format("20060102") + ".pdf"
			caption = "Latest price list"
		}
		return d.sender.SendDocument(ctx, p.Phone, caption, filename, doc)
	}
	return nil
}

func (d *Dispatcher) buildPriceList(ctx context.Context) ([]byte, error) {
	catalog, err := d.products.ActiveForPriceList(ctx)
	if err != nil {
		return nil, err
	}
	if len(catalog) == 0 {
		return nil, &httpx.BusinessError{Msg: "no active products for price list"}
	}
	return BuildPriceListPDF(catalog, d.now())
}

// PriceListPDF exposes the generated document for direct download.
func (d *Dispatcher) PriceListPDF(ctx context.Context) ([]byte, error) {
	return d.buildPriceList(ctx)
}
