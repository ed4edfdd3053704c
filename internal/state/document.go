// Package state defines the persisted document: one JSON-serializable
// record per user holding the catalog, the sales and cash ledgers, the
// order book, and the store settings.
package state

import (
	"time"

	"github.com/google/uuid"

	"github.com/docelucro/backend-doce/internal/pricing"
)

// OrderStatus is the lifecycle state of an encomenda.
type OrderStatus string

const (
	OrderOpen      OrderStatus = "aberta"
	OrderDelivered OrderStatus = "entregue"
	OrderCanceled  OrderStatus = "cancelada"
)

// MoveType is the channel of a cash-ledger entry. Inflow types match
// the settlement methods; "saida" records money leaving the register.
type MoveType string

const (
	MoveDinheiro MoveType = "dinheiro"
	MovePix      MoveType = "pix"
	MoveCartao   MoveType = "cartao"
	MoveSaida    MoveType = "saida"
)

// Inflow reports whether the move brings money into the register.
func (t MoveType) Inflow() bool {
	return t == MoveDinheiro || t == MovePix || t == MoveCartao
}

// MoveTypeFor maps a settlement method to its inflow move type.
func MoveTypeFor(m pricing.Method) MoveType {
	return MoveType(m)
}

// Product is a sellable catalog item.
type Product struct {
	ID        string    `json:"id"`
	Name      string    `json:"nome"`
	Price     float64   `json:"preco"`
	Cost      float64   `json:"custo"`
	CreatedAt time.Time `json:"createdAt"`
}

// Sale is an immutable counter-sale record. OrderID links synthetic
// sales produced by an order delivery back to their order so a
// replayed transition cannot double-count.
type Sale struct {
	ID        string             `json:"id"`
	Date      string             `json:"date"`
	CreatedAt time.Time          `json:"createdAt"`
	Method    pricing.Method     `json:"metodo"`
	Items     []pricing.LineItem `json:"items"`
	Discount  float64            `json:"desconto"`
	Surcharge float64            `json:"acrescimo"`
	Received  float64            `json:"recebido"`
	Change    float64            `json:"troco"`
	Total     float64            `json:"totalVenda"`
	TotalCost float64            `json:"totalCusto"`
	CardFee   float64            `json:"taxaCartao"`
	Profit    float64            `json:"lucro"`
	OrderID   string             `json:"orderId,omitempty"`
}

// Order is a customer encomenda. Mutable while open; the delivery and
// cancel transitions are terminal.
type Order struct {
	ID               string             `json:"id"`
	CreatedAt        time.Time          `json:"createdAt"`
	Status           OrderStatus        `json:"status"`
	Customer         string             `json:"cliente"`
	Whats            string             `json:"whats"`
	PickupDate       string             `json:"dataRetirada"`
	DeliveryFee      float64            `json:"taxaEntrega"`
	Deposit          float64            `json:"sinal"`
	Entries          []pricing.Entry    `json:"entries"`
	Items            []pricing.LineItem `json:"items"`
	Total            float64            `json:"total"`
	TotalCost        float64            `json:"totalCusto"`
	EstimatedProfit  float64            `json:"lucroEstimado"`
	DepositMethod    pricing.Method     `json:"metodoSinal,omitempty"`
	BalanceMethod    pricing.Method     `json:"metodoRestante,omitempty"`
	DepositRecorded  bool               `json:"sinalRegistrado"`
	DeliveryRecorded bool               `json:"entregaRegistrada"`
}

// Balance returns what is still due at delivery, never negative.
func (o Order) Balance() float64 {
	if rest := o.Total - o.Deposit; rest > 0 {
		return rest
	}
	return 0
}

// CashMove is an append-only cash-ledger entry.
type CashMove struct {
	ID        string    `json:"id"`
	Date      string    `json:"date"`
	Type      MoveType  `json:"tipo"`
	Value     float64   `json:"valor"`
	CreatedAt time.Time `json:"createdAt"`
	Note      string    `json:"note,omitempty"`
}

// SaleDraft is the transient counter-sale state kept between requests.
type SaleDraft struct {
	Cart      []pricing.Entry `json:"cart"`
	Method    pricing.Method  `json:"metodo"`
	Discount  float64         `json:"desconto"`
	Surcharge float64         `json:"acrescimo"`
	Received  float64         `json:"recebido"`
}

// Settings holds the scalar store configuration.
type Settings struct {
	Theme       string  `json:"theme"`
	StoreName   string  `json:"storeName"`
	MonthlyGoal float64 `json:"metaMensal"`
	GoalMonth   string  `json:"mesRef"`
}

// Document is the root record persisted per user.
type Document struct {
	SchemaVersion int        `json:"schemaVersion"`
	Settings      Settings   `json:"settings"`
	Products      []Product  `json:"products"`
	Sales         []Sale     `json:"sales"`
	Orders        []Order    `json:"orders"`
	CashMoves     []CashMove `json:"cashMoves"`
	Draft         SaleDraft  `json:"ui"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// NewID returns a fresh record identifier.
func NewID() string {
	return uuid.NewString()
}

// DayKey formats t as the canonical per-day ledger key.
func DayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// MonthKey formats t as the canonical per-month ledger key.
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}

// YearKey formats t as the canonical per-year ledger key.
func YearKey(t time.Time) string {
	return t.Format("2006")
}

// DefaultDocument builds a fresh document with first-run defaults.
func DefaultDocument(now time.Time) *Document {
	return &Document{
		SchemaVersion: SchemaVersion,
		Settings: Settings{
			Theme:       "dark",
			StoreName:   "Doce Lucro",
			MonthlyGoal: 3000,
			GoalMonth:   MonthKey(now),
		},
		Products:  []Product{},
		Sales:     []Sale{},
		Orders:    []Order{},
		CashMoves: []CashMove{},
		Draft:     SaleDraft{Method: pricing.MethodPix},
		UpdatedAt: now,
	}
}

// CatalogView adapts the document catalog to the pricing engine.
func (d *Document) CatalogView() []pricing.Product {
	out := make([]pricing.Product, 0, len(d.Products))
	for _, p := range d.Products {
		out = append(out, pricing.Product{ID: p.ID, Name: p.Name, Price: p.Price, Cost: p.Cost})
	}
	return out
}

// FindOrder returns a pointer into the document's order book.
func (d *Document) FindOrder(id string) *Order {
	for i := range d.Orders {
		if d.Orders[i].ID == id {
			return &d.Orders[i]
		}
	}
	return nil
}

// FindProduct returns a pointer into the document's catalog.
func (d *Document) FindProduct(id string) *Product {
	for i := range d.Products {
		if d.Products[i].ID == id {
			return &d.Products[i]
		}
	}
	return nil
}
