package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viknesh-web/grocery-management-api-sub001/internal/domain/customer"
	"github.com/viknesh-web/grocery-management-api-sub001/internal/domain/job"
	"github.com/viknesh-web/grocery-management-api-sub001/internal/domain/product"
	"github.com/viknesh-web/grocery-management-api-sub001/internal/httpx"
)

type fakeCustomers struct {
	active []customer.Customer
}

func (f *fakeCustomers) ListActive(context.Context) ([]customer.Customer, error) {
	return f.active, nil
}

func (f *fakeCustomers) ByIDs(_ context.Context, ids []int64) ([]customer.Customer, error) {
	var out []customer.Customer
	for _, c := range f.active {
		for _, id := range ids {
			if c.ID == id {
				out = append(out, c)
			}
		}
	}
	return out, nil
}

type fakeProducts struct {
	catalog []product.Product
}

func (f *fakeProducts) ActiveForPriceList(context.Context) ([]product.Product, error) {
	return f.catalog, nil
}

type sentMessage struct {
	phone    string
	text     string
	template string
	document string
}

type fakeSender struct {
	sent    []sentMessage
	failFor map[string]error
}

func (f *fakeSender) SendText(_ context.Context, phone, text string) error {
	if err := f.failFor[phone]; err != nil {
		return err
	}
	f.sent = append(f.sent, sentMessage{phone: phone, text: text})
	return nil
}

func (f *fakeSender) SendTemplate(_ context.Context, phone, name, lang string) error {
	if err := f.failFor[phone]; err != nil {
		return err
	}
	f.sent = append(f.sent, sentMessage{phone: phone, template: name + "/" + lang})
	return nil
}

func (f *fakeSender) SendDocument(_ context.Context, phone, _, filename string, _ []byte) error {
	f.sent = append(f.sent, sentMessage{phone: phone, document: filename})
	return nil
}

type fakeQueue struct {
	enqueued []job.Job
}

func (f *fakeQueue) Enqueue(_ context.Context, jobType string, payload any) (job.Job, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return job.Job{}, err
	}
	j := job.Job{Type: jobType, Payload: raw, Status: job.StatusQueued}
	f.enqueued = append(f.enqueued, j)
	return j, nil
}

func testRecipients() []customer.Customer {
	return []customer.Customer{
		{ID: 1, Name: "Asha", Phone: "919800000001", IsActive: true},
		{ID: 2, Name: "Binu", Phone: "919800000002", IsActive: true},
		{ID: 3, Name: "Cyril", Phone: "919800000003", IsActive: true},
	}
}

func newTestDispatcher(sender *fakeSender, queue *fakeQueue) *Dispatcher {
	d := NewDispatcher(
		&fakeCustomers{active: testRecipients()},
		&fakeProducts{catalog: []product.Product{
			{ID: 1, Name: "Basmati Rice", Code: "RICE-01", StockUnit: "kg", BasePrice: decimal.NewFromInt(100), IsActive: true},
		}},
		sender,
		queue,
	)
	d.now = func() time.Time { return time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC) }
	return d
}

func TestSendRejectsAmbiguousRecipients(t *testing.T) {
	d := newTestDispatcher(&fakeSender{}, &fakeQueue{})

	_, err := d.Send(context.Background(), SendRequest{Message: "hi"})
	var verr *httpx.ValidationError
	require.ErrorAs(t, err, &verr)

	_, err = d.Send(context.Background(), SendRequest{AllActive: true, CustomerIDs: []int64{1}, Message: "hi"})
	require.ErrorAs(t, err, &verr)
}

func TestSendRejectsAmbiguousContent(t *testing.T) {
	d := newTestDispatcher(&fakeSender{}, &fakeQueue{})

	_, err := d.Send(context.Background(), SendRequest{AllActive: true})
	var verr *httpx.ValidationError
	require.ErrorAs(t, err, &verr)

	_, err = d.Send(context.Background(), SendRequest{AllActive: true, Message: "hi", Template: "offer"})
	require.ErrorAs(t, err, &verr)
}

func TestSendRejectsUnknownCustomer(t *testing.T) {
	d := newTestDispatcher(&fakeSender{}, &fakeQueue{})

	_, err := d.Send(context.Background(), SendRequest{CustomerIDs: []int64{1, 99}, Message: "hi"})
	var verr *httpx.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestSendAggregatesPartialFailures(t *testing.T) {
	sender := &fakeSender{failFor: map[string]error{
		"919800000002": errors.New("number not on whatsapp"),
	}}
	d := newTestDispatcher(sender, &fakeQueue{})

	summary, err := d.Send(context.Background(), SendRequest{AllActive: true, Message: "fresh stock in"})
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 2, summary.Sent)
	assert.Equal(t, 1, summary.Failed)
	require.Len(t, summary.Detail, 3)
	assert.False(t, summary.Detail[1].Sent)
	assert.Equal(t, "number not on whatsapp", summary.Detail[1].Error)
	assert.True(t, summary.Detail[2].Sent, "failure must not abort the batch")
}

func TestSendTemplateMode(t *testing.T) {
	sender := &fakeSender{}
	d := newTestDispatcher(sender, &fakeQueue{})

	summary, err := d.Send(context.Background(), SendRequest{
		CustomerIDs: []int64{1},
		Template:    "weekly_offers",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Sent)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "weekly_offers/en", sender.sent[0].template)
}

func TestSendAttachesPriceList(t *testing.T) {
	sender := &fakeSender{}
	d := newTestDispatcher(sender, &fakeQueue{})

	summary, err := d.Send(context.Background(), SendRequest{
		CustomerIDs: []int64{1},
		Message:     "price list attached",
		AttachPDF:   true,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Sent)
	require.Len(t, sender.sent, 2)
	assert.Equal(t, "price list attached", sender.sent[0].text)
	assert.Equal(t, "price-list-20240601.pdf", sender.sent[1].document)
}

func TestSendCustomPDF(t *testing.T) {
	sender := &fakeSender{}
	d := newTestDispatcher(sender, &fakeQueue{})

	summary, err := d.Send(context.Background(), SendRequest{
		CustomerIDs: []int64{1},
		Message:     "see attached",
		CustomPDF:   []byte("%PDF-1.4 fake"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Sent)
	require.Len(t, sender.sent, 2)
	assert.Equal(t, "attachment.pdf", sender.sent[1].document)
}

func TestSendRejectsBothPDFSources(t *testing.T) {
	d := newTestDispatcher(&fakeSender{}, &fakeQueue{})

	_, err := d.Send(context.Background(), SendRequest{
		CustomerIDs: []int64{1},
		Message:     "hi",
		AttachPDF:   true,
		CustomPDF:   []byte("%PDF"),
	})
	var verr *httpx.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestSendAsyncEnqueuesPerRecipient(t *testing.T) {
	sender := &fakeSender{}
	queue := &fakeQueue{}
	d := newTestDispatcher(sender, queue)

	summary, err := d.Send(context.Background(), SendRequest{
		AllActive: true,
		Message:   "hello",
		Async:     true,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Queued)
	assert.Zero(t, summary.Sent)
	assert.Empty(t, sender.sent)
	require.Len(t, queue.enqueued, 3)

	var payload SendPayload
	require.NoError(t, json.Unmarshal(queue.enqueued[0].Payload, &payload))
	assert.Equal(t, job.TypeWhatsAppSend, queue.enqueued[0].Type)
	assert.Equal(t, "919800000001", payload.Phone)
	assert.Equal(t, "hello", payload.Message)
}

func TestHandleJobDeliversPayload(t *testing.T) {
	sender := &fakeSender{}
	d := newTestDispatcher(sender, &fakeQueue{})

	raw, err := json.Marshal(SendPayload{Phone: "919800000001", Message: "hi"})
	require.NoError(t, err)

	err = d.HandleJob(context.Background(), job.Job{Type: job.TypeWhatsAppSend, Payload: raw})
	require.NoError(t, err)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "hi", sender.sent[0].text)
}

func TestHandleJobRejectsBadPayload(t *testing.T) {
	d := newTestDispatcher(&fakeSender{}, &fakeQueue{})

	err := d.HandleJob(context.Background(), job.Job{Payload: []byte("not json")})
	require.Error(t, err)
}

func TestBuildPriceListPDF(t *testing.T) {
	catalog := []product.Product{
		{Name: "Basmati Rice", Code: "RICE-01", StockUnit: "kg", BasePrice: decimal.NewFromInt(100)},
		{Name: "Sunflower Oil", Code: "OIL-02", StockUnit: "liter", BasePrice: decimal.NewFromInt(140)},
	}
	doc, err := BuildPriceListPDF(catalog, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, len(doc) > 500)
	assert.Equal(t, "%PDF", string(doc[:4]))
}

func TestSendSkipsRecipientWithBadPhone(t *testing.T) {
	sender := &fakeSender{}
	d := newTestDispatcher(sender, &fakeQueue{})
	d.customers = &fakeCustomers{active: []customer.Customer{
		{ID: 1, Name: "Asha", Phone: "919800000001", IsActive: true},
		{ID: 2, Name: "Binu", Phone: "not-a-number", IsActive: true},
		{ID: 3, Name: "Cyril", Phone: "+91 98000-00003", IsActive: true},
	}}

	summary, err := d.Send(context.Background(), SendRequest{AllActive: true, Message: "hi"})
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Sent)
	assert.Equal(t, 1, summary.Failed)
	require.Len(t, summary.Detail, 3)
	assert.False(t, summary.Detail[1].Sent)
	assert.Equal(t, "invalid phone number on record", summary.Detail[1].Error)

	// The bad number never reaches the sender, and formatted numbers
	// go out normalized.
	require.Len(t, sender.sent, 2)
	assert.Equal(t, "919800000001", sender.sent[0].phone)
	assert.Equal(t, "919800000003", sender.sent[1].phone)
}

func TestSendAsyncSkipsRecipientWithBadPhone(t *testing.T) {
	queue := &fakeQueue{}
	d := newTestDispatcher(&fakeSender{}, queue)
	d.customers = &fakeCustomers{active: []customer.Customer{
		{ID: 1, Name: "Asha", Phone: "919800000001", IsActive: true},
		{ID: 2, Name: "Binu", Phone: "12", IsActive: true},
	}}

	summary, err := d.Send(context.Background(), SendRequest{AllActive: true, Message: "hi", Async: true})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Queued)
	assert.Equal(t, 1, summary.Failed)
	require.Len(t, queue.enqueued, 1)

	var payload SendPayload
	require.NoError(t, json.Unmarshal(queue.enqueued[0].Payload, &payload))
	assert.Equal(t, "919800000001", payload.Phone)
}
