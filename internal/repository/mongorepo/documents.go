package mongorepo

import (
	"fmt"
	"time"

	"repair-desk/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type productEntity struct {
	ID          string               `bson:"_id"`
	Name        string               `bson:"name"`
	Description string               `bson:"description"`
	Price       primitive.Decimal128 `bson:"price"`
	Stock       int                  `bson:"stock"`
	Category    string               `bson:"category"`
	Brand       string               `bson:"brand"`
	Images      []string             `bson:"images"`
	CreatedAt   time.Time            `bson:"created_at"`
	UpdatedAt   time.Time            `bson:"updated_at"`
}

type secondHandEntity struct {
	Product        productEntity `bson:",inline"`
	Condition      string        `bson:"condition"`
	UsageDuration  string        `bson:"usage_duration"`
	ConditionNotes string        `bson:"condition_notes"`
}

type repairItemEntity struct {
	ModelNo               string            `bson:"model_no"`
	SerialNo              string            `bson:"serial_no"`
	Problem               string            `bson:"problem"`
	ProductType           string            `bson:"product_type"`
	ServicingCompleted    bool              `bson:"servicing_completed"`
	TechnicianName        string            `bson:"technician_name,omitempty"`
	ServicedAt            *time.Time        `bson:"serviced_at,omitempty"`
	SelectedAccessories   []string          `bson:"selected_accessories"`
	AccessoryDescriptions map[string]string `bson:"accessory_descriptions"`
	Image                 string            `bson:"image,omitempty"`
}

type repairOrderEntity struct {
	ID                   string                `bson:"_id"`
	CustomerName         string                `bson:"customer_name"`
	CustomerEmail        string                `bson:"customer_email"`
	ContactNumber        string                `bson:"contact_number"`
	ReceiverName         string                `bson:"receiver_name"`
	Items                []repairItemEntity    `bson:"items"`
	Status               string                `bson:"repair_status"`
	RepairCost           primitive.Decimal128  `bson:"repair_cost"`
	ExpectedAmount       *primitive.Decimal128 `bson:"expected_amount,omitempty"`
	TechnicianName       string                `bson:"technician_name"`
	StartDate            time.Time             `bson:"start_date"`
	CompletionDate       *time.Time            `bson:"completion_date,omitempty"`
	ExpectedDeliveryDate *time.Time            `bson:"expected_delivery_date,omitempty"`
	CreatedAt            time.Time             `bson:"created_at"`
	UpdatedAt            time.Time             `bson:"updated_at"`
	Version              int                   `bson:"version"`
}

type saleLineEntity struct {
	ProductID   string               `bson:"product_id"`
	ProductName string               `bson:"product_name"`
	Quantity    int                  `bson:"quantity"`
	SalePrice   primitive.Decimal128 `bson:"sale_price"`
}

type saleEntity struct {
	ID          string               `bson:"_id"`
	Lines       []saleLineEntity     `bson:"lines"`
	TotalAmount primitive.Decimal128 `bson:"total_amount"`
	SaleDate    time.Time            `bson:"sale_date"`
	CreatedAt   time.Time            `bson:"created_at"`
}

type saleTransactionEntity struct {
	ID           string               `bson:"_id"`
	ProductID    string               `bson:"product_id"`
	ProductName  string               `bson:"product_name"`
	QuantitySold int                  `bson:"quantity_sold"`
	SalePrice    primitive.Decimal128 `bson:"sale_price"`
	TotalAmount  primitive.Decimal128 `bson:"total_amount"`
	SaleDate     time.Time            `bson:"sale_date"`
}

type activityEntity struct {
	ID        string    `bson:"_id"`
	Type      string    `bson:"type"`
	Message   string    `bson:"message"`
	CreatedAt time.Time `bson:"created_at"`
}

func toDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	v, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		return primitive.Decimal128{}, fmt.Errorf("failed to encode amount %s: %w", d, err)
	}
	return v, nil
}

func fromDecimal128(v primitive.Decimal128) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(v.String())
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to decode amount %s: %w", v, err)
	}
	return d, nil
}

func parseID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to decode id %q: %w", s, err)
	}
	return id, nil
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func newProductEntity(p *domain.Product) (*productEntity, error) {
	price, err := toDecimal128(p.Price)
	if err != nil {
		return nil, err
	}
	return &productEntity{
		ID:          p.ID.String(),
		Name:        p.Name,
		Description: p.Description,
		Price:       price,
		Stock:       p.Stock,
		Category:    p.Category,
		Brand:       p.Brand,
		Images:      nonNilStrings(p.Images),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}, nil
}

func (e *productEntity) toDomain() (*domain.Product, error) {
	id, err := parseID(e.ID)
	if err != nil {
		return nil, err
	}
	price, err := fromDecimal128(e.Price)
	if err != nil {
		return nil, err
	}
	return &domain.Product{
		ID:          id,
		Name:        e.Name,
		Description: e.Description,
		Price:       price,
		Stock:       e.Stock,
		Category:    e.Category,
		Brand:       e.Brand,
		Images:      nonNilStrings(e.Images),
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}, nil
}

func newSecondHandEntity(p *domain.SecondHandProduct) (*secondHandEntity, error) {
	base, err := newProductEntity(&domain.Product{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Stock:       p.Stock,
		Category:    p.Category,
		Brand:       p.Brand,
		Images:      p.Images,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	})
	if err != nil {
		return nil, err
	}
	return &secondHandEntity{
		Product:        *base,
		Condition:      string(p.Condition),
		UsageDuration:  p.UsageDuration,
		ConditionNotes: p.ConditionNotes,
	}, nil
}

func (e *secondHandEntity) toDomain() (*domain.SecondHandProduct, error) {
	base, err := e.Product.toDomain()
	if err != nil {
		return nil, err
	}
	return &domain.SecondHandProduct{
		ID:             base.ID,
		Name:           base.Name,
		Description:    base.Description,
		Price:          base.Price,
		Stock:          base.Stock,
		Category:       base.Category,
		Brand:          base.Brand,
		Images:         base.Images,
		Condition:      domain.Condition(e.Condition),
		UsageDuration:  e.UsageDuration,
		ConditionNotes: e.ConditionNotes,
		CreatedAt:      base.CreatedAt,
		UpdatedAt:      base.UpdatedAt,
	}, nil
}

func newRepairOrderEntity(o *domain.RepairOrder) (*repairOrderEntity, error) {
	cost, err := toDecimal128(o.RepairCost)
	if err != nil {
		return nil, err
	}

	var expected *primitive.Decimal128
	if o.ExpectedAmount != nil {
		v, err := toDecimal128(*o.ExpectedAmount)
		if err != nil {
			return nil, err
		}
		expected = &v
	}

	items := make([]repairItemEntity, len(o.Items))
	for idx, item := range o.Items {
		items[idx] = repairItemEntity{
			ModelNo:               item.ModelNo,
			SerialNo:              item.SerialNo,
			Problem:               item.Problem,
			ProductType:           string(item.ProductType),
			ServicingCompleted:    item.ServicingCompleted,
			TechnicianName:        item.TechnicianName,
			ServicedAt:            item.ServicedAt,
			SelectedAccessories:   nonNilStrings(item.SelectedAccessories),
			AccessoryDescriptions: item.AccessoryDescriptions,
			Image:                 item.Image,
		}
		if items[idx].AccessoryDescriptions == nil {
			items[idx].AccessoryDescriptions = map[string]string{}
		}
	}

	return &repairOrderEntity{
		ID:                   o.ID.String(),
		CustomerName:         o.CustomerName,
		CustomerEmail:        o.CustomerEmail,
		ContactNumber:        o.ContactNumber,
		ReceiverName:         o.ReceiverName,
		Items:                items,
		Status:               string(o.Status),
		RepairCost:           cost,
		ExpectedAmount:       expected,
		TechnicianName:       o.TechnicianName,
		StartDate:            o.StartDate,
		CompletionDate:       o.CompletionDate,
		ExpectedDeliveryDate: o.ExpectedDeliveryDate,
		CreatedAt:            o.CreatedAt,
		UpdatedAt:            o.UpdatedAt,
		Version:              o.Version,
	}, nil
}

func (e *repairOrderEntity) toDomain() (*domain.RepairOrder, error) {
	id, err := parseID(e.ID)
	if err != nil {
		return nil, err
	}
	cost, err := fromDecimal128(e.RepairCost)
	if err != nil {
		return nil, err
	}

	var expected *decimal.Decimal
	if e.ExpectedAmount != nil {
		v, err := fromDecimal128(*e.ExpectedAmount)
		if err != nil {
			return nil, err
		}
		expected = &v
	}

	items := make([]domain.RepairItem, len(e.Items))
	for idx, item := range e.Items {
		items[idx] = domain.RepairItem{
			ModelNo:               item.ModelNo,
			SerialNo:              item.SerialNo,
			Problem:               item.Problem,
			ProductType:           domain.ProductType(item.ProductType),
			ServicingCompleted:    item.ServicingCompleted,
			TechnicianName:        item.TechnicianName,
			ServicedAt:            item.ServicedAt,
			SelectedAccessories:   nonNilStrings(item.SelectedAccessories),
			AccessoryDescriptions: item.AccessoryDescriptions,
			Image:                 item.Image,
		}
		if items[idx].AccessoryDescriptions == nil {
			items[idx].AccessoryDescriptions = map[string]string{}
		}
	}

	return &domain.RepairOrder{
		ID:                   id,
		CustomerName:         e.CustomerName,
		CustomerEmail:        e.CustomerEmail,
		ContactNumber:        e.ContactNumber,
		ReceiverName:         e.ReceiverName,
		Items:                items,
		Status:               domain.RepairStatus(e.Status),
		RepairCost:           cost,
		ExpectedAmount:       expected,
		TechnicianName:       e.TechnicianName,
		StartDate:            e.StartDate,
		CompletionDate:       e.CompletionDate,
		ExpectedDeliveryDate: e.ExpectedDeliveryDate,
		CreatedAt:            e.CreatedAt,
		UpdatedAt:            e.UpdatedAt,
		Version:              e.Version,
	}, nil
}

func newSaleEntity(s *domain.Sale) (*saleEntity, error) {
	total, err := toDecimal128(s.TotalAmount)
	if err != nil {
		return nil, err
	}
	lines := make([]saleLineEntity, len(s.Lines))
	for idx, line := range s.Lines {
		price, err := toDecimal128(line.SalePrice)
		if err != nil {
			return nil, err
		}
		lines[idx] = saleLineEntity{
			ProductID:   line.ProductID.String(),
			ProductName: line.ProductName,
			Quantity:    line.Quantity,
			SalePrice:   price,
		}
	}
	return &saleEntity{
		ID:          s.ID.String(),
		Lines:       lines,
		TotalAmount: total,
		SaleDate:    s.SaleDate,
		CreatedAt:   s.CreatedAt,
	}, nil
}

func (e *saleEntity) toDomain() (*domain.Sale, error) {
	id, err := parseID(e.ID)
	if err != nil {
		return nil, err
	}
	total, err := fromDecimal128(e.TotalAmount)
	if err != nil {
		return nil, err
	}
	lines := make([]domain.SaleLine, len(e.Lines))
	for idx, line := range e.Lines {
		productID, err := parseID(line.ProductID)
		if err != nil {
			return nil, err
		}
		price, err := fromDecimal128(line.SalePrice)
		if err != nil {
			return nil, err
		}
		lines[idx] = domain.SaleLine{
			ProductID:   productID,
			ProductName: line.ProductName,
			Quantity:    line.Quantity,
			SalePrice:   price,
		}
	}
	return &domain.Sale{
		ID:          id,
		Lines:       lines,
		TotalAmount: total,
		SaleDate:    e.SaleDate,
		CreatedAt:   e.CreatedAt,
	}, nil
}

func newSaleTransactionEntity(t *domain.SaleTransaction) (*saleTransactionEntity, error) {
	price, err := toDecimal128(t.SalePrice)
	if err != nil {
		return nil, err
	}
	total, err := toDecimal128(t.TotalAmount)
	if err != nil {
		return nil, err
	}
	return &saleTransactionEntity{
		ID:           t.ID.String(),
		ProductID:    t.ProductID.String(),
		ProductName:  t.ProductName,
		QuantitySold: t.QuantitySold,
		SalePrice:    price,
		TotalAmount:  total,
		SaleDate:     t.SaleDate,
	}, nil
}

func (e *saleTransactionEntity) toDomain() (*domain.SaleTransaction, error) {
	id, err := parseID(e.ID)
	if err != nil {
		return nil, err
	}
	productID, err := parseID(e.ProductID)
	if err != nil {
		return nil, err
	}
	price, err := fromDecimal128(e.SalePrice)
	if err != nil {
		return nil, err
	}
	total, err := fromDecimal128(e.TotalAmount)
	if err != nil {
		return nil, err
	}
	return &domain.SaleTransaction{
		ID:           id,
		ProductID:    productID,
		ProductName:  e.ProductName,
		QuantitySold: e.QuantitySold,
		SalePrice:    price,
		TotalAmount:  total,
		SaleDate:     e.SaleDate,
	}, nil
}
