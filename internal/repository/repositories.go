package repository

import "database/sql"

// Repositories bundles one store's implementations of every repository
type Repositories struct {
	Products     ProductRepository
	SecondHand   SecondHandProductRepository
	RepairOrders RepairOrderRepository
	Sales        SaleRepository
	Activities   ActivityRepository
}

// NewPostgresRepositories wires every repository to a PostgreSQL database
func NewPostgresRepositories(db *sql.DB) *Repositories {
	return &Repositories{
		Products:     NewProductRepository(db),
		SecondHand:   NewSecondHandProductRepository(db),
		RepairOrders: NewRepairOrderRepository(db),
		Sales:        NewSaleRepository(db),
		Activities:   NewActivityRepository(db),
	}
}
