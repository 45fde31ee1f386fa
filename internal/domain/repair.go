package domain

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RepairStatus is the lifecycle state of a repair order
type RepairStatus string

const (
	StatusPending    RepairStatus = "Pending"
	StatusInProgress RepairStatus = "In Progress"
	StatusCompleted  RepairStatus = "Completed"
	StatusCanceled   RepairStatus = "Canceled"
)

// RepairStatuses lists every status in lifecycle order
var RepairStatuses = []RepairStatus{StatusPending, StatusInProgress, StatusCompleted, StatusCanceled}

// ParseRepairStatus converts s to a RepairStatus
func ParseRepairStatus(s string) (RepairStatus, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", NewValidationError("repairStatus", "is required")
	}
	for _, status := range RepairStatuses {
		if string(status) == s {
			return status, nil
		}
	}
	return "", NewValidationError("repairStatus", "must be one of Pending, In Progress, Completed, Canceled")
}

// IsTerminal reports whether no further transition is possible
func (s RepairStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCanceled
}

// CanTransitionTo reports whether the state machine allows s -> to
func (s RepairStatus) CanTransitionTo(to RepairStatus) bool {
	switch s {
	case StatusPending:
		return to == StatusInProgress || to == StatusCompleted || to == StatusCanceled
	case StatusInProgress:
		return to == StatusCompleted || to == StatusCanceled
	default:
		return false
	}
}

// ProductType classifies a repair item
type ProductType string

const (
	ProductTypeCamera ProductType = "camera"
	ProductTypeDrone  ProductType = "drone"
	ProductTypeLED    ProductType = "led"
	ProductTypeOther  ProductType = "other"
)

// ProductTypes lists every product type
var ProductTypes = []ProductType{ProductTypeCamera, ProductTypeDrone, ProductTypeLED, ProductTypeOther}

// ParseProductType converts s to a ProductType. An empty string yields ProductTypeOther.
func ParseProductType(s string) (ProductType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ProductTypeOther, nil
	}
	for _, pt := range ProductTypes {
		if string(pt) == s {
			return pt, nil
		}
	}
	return "", NewValidationError("productType", "must be one of camera, drone, led, other")
}

// RepairItem is one physical product inside a repair order
type RepairItem struct {
	ModelNo               string            `json:"modelNo"`
	SerialNo              string            `json:"serialNo"`
	Problem               string            `json:"problem"`
	ProductType           ProductType       `json:"productType"`
	ServicingCompleted    bool              `json:"servicingCompleted"`
	TechnicianName        string            `json:"technicianName,omitempty"`
	ServicedAt            *time.Time        `json:"servicedAt,omitempty"`
	SelectedAccessories   []string          `json:"selectedAccessories"`
	AccessoryDescriptions map[string]string `json:"accessoryDescriptions"`
	Image                 string            `json:"image,omitempty"`
}

func (i *RepairItem) normalize() {
	i.ModelNo = strings.TrimSpace(i.ModelNo)
	i.SerialNo = strings.TrimSpace(i.SerialNo)
	i.Problem = strings.TrimSpace(i.Problem)
	i.Image = strings.TrimSpace(i.Image)
	if i.SelectedAccessories == nil {
		i.SelectedAccessories = []string{}
	}
	if i.AccessoryDescriptions == nil {
		i.AccessoryDescriptions = map[string]string{}
	}
}

// Validate checks the item invariants. index is used in field names of the returned error.
func (i *RepairItem) Validate(index int) error {
	field := func(name string) string { return fmt.Sprintf("items[%d].%s", index, name) }

	if _, err := ParseProductType(string(i.ProductType)); err != nil {
		return NewValidationError(field("productType"), "must be one of camera, drone, led, other")
	}

	selected := make(map[string]struct{}, len(i.SelectedAccessories))
	for _, a := range i.SelectedAccessories {
		selected[a] = struct{}{}
	}
	for name := range i.AccessoryDescriptions {
		if _, ok := selected[name]; !ok {
			return NewValidationError(field("accessoryDescriptions"),
				fmt.Sprintf("%q is not a selected accessory", name))
		}
	}

	if i.Image != "" {
		u, err := url.Parse(i.Image)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return NewValidationError(field("image"), "must be an http or https URL")
		}
	}
	return nil
}

// RepairOrder is a customer's request to service one or more items
type RepairOrder struct {
	ID                   uuid.UUID        `json:"id"`
	CustomerName         string           `json:"customerName"`
	CustomerEmail        string           `json:"customerEmail"`
	ContactNumber        string           `json:"contactNumber"`
	ReceiverName         string           `json:"receiverName"`
	Items                []RepairItem     `json:"items"`
	Status               RepairStatus     `json:"repairStatus"`
	RepairCost           decimal.Decimal  `json:"repairCost"`
	ExpectedAmount       *decimal.Decimal `json:"expectedAmount,omitempty"`
	TechnicianName       string           `json:"technicianName"`
	StartDate            time.Time        `json:"startDate"`
	CompletionDate       *time.Time       `json:"completionDate,omitempty"`
	ExpectedDeliveryDate *time.Time       `json:"expectedDeliveryDate,omitempty"`
	CreatedAt            time.Time        `json:"createdAt"`
	UpdatedAt            time.Time        `json:"updatedAt"`
	Version              int              `json:"version"`
}

// Normalize trims free-text fields and fills nil collections
func (o *RepairOrder) Normalize() {
	o.CustomerName = strings.TrimSpace(o.CustomerName)
	o.CustomerEmail = strings.TrimSpace(o.CustomerEmail)
	o.ContactNumber = strings.TrimSpace(o.ContactNumber)
	o.ReceiverName = strings.TrimSpace(o.ReceiverName)
	o.TechnicianName = strings.TrimSpace(o.TechnicianName)
	for idx := range o.Items {
		o.Items[idx].normalize()
		if pt, err := ParseProductType(string(o.Items[idx].ProductType)); err == nil {
			o.Items[idx].ProductType = pt
		}
	}
}

// Validate checks the order invariants
func (o *RepairOrder) Validate() error {
	if o.CustomerName == "" {
		return NewValidationError("customerName", "is required")
	}
	if o.ContactNumber == "" {
		return NewValidationError("contactNumber", "is required")
	}
	if len(o.Items) == 0 {
		return NewValidationError("items", "at least one item is required")
	}
	for idx := range o.Items {
		if err := o.Items[idx].Validate(idx); err != nil {
			return err
		}
	}
	if _, err := ParseRepairStatus(string(o.Status)); err != nil {
		return err
	}
	if o.RepairCost.IsNegative() {
		return NewValidationError("repairCost", "must not be negative")
	}
	if o.ExpectedAmount != nil && o.ExpectedAmount.IsNegative() {
		return NewValidationError("expectedAmount", "must not be negative")
	}
	if o.CompletionDate != nil && o.CompletionDate.Before(o.StartDate) {
		return NewValidationError("completionDate", "must be on or after the start date")
	}
	return nil
}

// TotalItems is the number of items in the order
func (o *RepairOrder) TotalItems() int {
	return len(o.Items)
}

// ItemsRemaining counts the items still waiting for servicing
func (o *RepairOrder) ItemsRemaining() int {
	remaining := 0
	for _, item := range o.Items {
		if !item.ServicingCompleted {
			remaining++
		}
	}
	return remaining
}

// Transition moves the order to status to. repairCost is required when completing
// and ignored otherwise. now becomes the completion date.
func (o *RepairOrder) Transition(to RepairStatus, repairCost *decimal.Decimal, now time.Time) error {
	if repairCost != nil && repairCost.IsNegative() {
		return NewValidationError("repairCost", "must not be negative")
	}
	if !o.Status.CanTransitionTo(to) {
		return &TransitionError{From: o.Status, To: to}
	}
	if to == StatusCompleted && repairCost == nil {
		return NewValidationError("repairCost", "is required to complete a repair order")
	}

	if to == StatusCompleted {
		if now.Before(o.StartDate) {
			return NewValidationError("completionDate", "must be on or after the start date")
		}
		completed := now
		o.CompletionDate = &completed
		o.RepairCost = *repairCost
	}

	o.Status = to
	o.UpdatedAt = now
	return nil
}

// MarkItemServiced marks the item at index as serviced by technician.
// It reports false without changing anything when the item was already serviced.
func (o *RepairOrder) MarkItemServiced(index int, technician string, now time.Time) (bool, error) {
	technician = strings.TrimSpace(technician)
	if technician == "" {
		return false, NewValidationError("technicianName", "is required to mark an item as serviced")
	}
	if index < 0 || index >= len(o.Items) {
		return false, NewNotFoundError(ResourceRepairItem, fmt.Sprintf("%s/%d", o.ID, index))
	}

	item := &o.Items[index]
	if item.ServicingCompleted {
		return false, nil
	}

	servicedAt := now
	item.ServicingCompleted = true
	item.TechnicianName = technician
	item.ServicedAt = &servicedAt
	o.TechnicianName = technician
	o.UpdatedAt = now
	return true, nil
}

// ApplyDetails copies the editable fields of update into o. Servicing state of
// items present in both is kept from o.
func (o *RepairOrder) ApplyDetails(update *RepairOrder, now time.Time) error {
	if o.Status.IsTerminal() {
		return ErrOrderClosed
	}

	items := make([]RepairItem, len(update.Items))
	copy(items, update.Items)
	for idx := range items {
		if idx < len(o.Items) {
			items[idx].ServicingCompleted = o.Items[idx].ServicingCompleted
			items[idx].TechnicianName = o.Items[idx].TechnicianName
			items[idx].ServicedAt = o.Items[idx].ServicedAt
		} else {
			items[idx].ServicingCompleted = false
			items[idx].TechnicianName = ""
			items[idx].ServicedAt = nil
		}
	}

	o.CustomerName = update.CustomerName
	o.CustomerEmail = update.CustomerEmail
	o.ContactNumber = update.ContactNumber
	o.ReceiverName = update.ReceiverName
	o.ExpectedAmount = update.ExpectedAmount
	o.ExpectedDeliveryDate = update.ExpectedDeliveryDate
	o.Items = items
	o.UpdatedAt = now

	o.Normalize()
	return o.Validate()
}
