package bank

import (
	container "github.com/thehyperflames/dicontainer-go"
)

const BANK_SERVICE = "bank-service"

// Service wraps the custody ledger for the DI container.
type Service struct {
	container.BaseDIInstance
	ledger *Ledger
}

func (svc *Service) ID() string {
	return BANK_SERVICE
}

func (svc *Service) Configure(c container.IContainer) error {
	svc.ledger = NewLedger()
	return nil
}

func (svc *Service) Start() error { return nil }

func (svc *Service) Stop() error { return nil }

func (svc *Service) Ledger() *Ledger {
	return svc.ledger
}
