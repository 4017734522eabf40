package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Jassur2025/metallerp-sub000/internal/config"
	"github.com/Jassur2025/metallerp-sub000/internal/dto"
	"github.com/Jassur2025/metallerp-sub000/internal/infra"
	"github.com/Jassur2025/metallerp-sub000/internal/ledger"
	"github.com/Jassur2025/metallerp-sub000/internal/model"
	"github.com/Jassur2025/metallerp-sub000/internal/realtime"
	"github.com/Jassur2025/metallerp-sub000/internal/repository"
	"github.com/Jassur2025/metallerp-sub000/internal/worker"

	"github.com/bsm/redislock"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const balancesCacheKey = "balances"

// TreasuryService derives till and account balances from the transaction
// ledger. Balances are never stored; they are opening balance + signed sum.
type TreasuryService interface {
	Balances(ctx context.Context) (ledger.Balances, error)
	GetBalances(ctx context.Context) (*dto.BalancesResponse, error)
	RecordMovement(ctx context.Context, req dto.MovementRequest) (*dto.TransactionResponse, error)
	ListTransactions(ctx context.Context, filter dto.TransactionFilter) (*dto.TransactionListResponse, error)
	// Invalidate drops the cached balances after a ledger commit.
	Invalidate(ctx context.Context)
}

type treasuryService struct {
	repo   repository.TransactionRepository
	cache  *infra.Cache
	cfg    *config.Config
	locker *redislock.Client
	notify notifier
	now    func() time.Time
}

func NewTreasuryService(
	repo repository.TransactionRepository,
	cache *infra.Cache,
	cfg *config.Config,
	locker *redislock.Client,
	dispatcher *worker.Dispatcher,
	hub *realtime.Hub,
) TreasuryService {
	return &treasuryService{
		repo:   repo,
		cache:  cache,
		cfg:    cfg,
		locker: locker,
		notify: newNotifier(dispatcher, hub),
		now:    time.Now,
	}
}

func (s *treasuryService) Balances(ctx context.Context) (ledger.Balances, error) {
	var b ledger.Balances
	if err := s.cache.Get(ctx, balancesCacheKey, &b); err == nil {
		return b, nil
	} else if !errors.Is(err, infra.ErrCacheMiss) {
		log.Warn().Err(err).Msg("balances cache read failed")
	}

	b, err := s.opening()
	if err != nil {
		return b, err
	}
	sums, err := s.repo.SumByMethodCurrency(ctx)
	if err != nil {
		return b, err
	}
	for k, v := range sums {
		switch {
		case k.Method == model.PaymentCash && k.Currency == string(ledger.USD):
			b.CashUSD = b.CashUSD.Add(v)
		case k.Method == model.PaymentCash:
			b.CashUZS = b.CashUZS.Add(v)
		case k.Method == model.PaymentCard:
			b.CardUZS = b.CardUZS.Add(v)
		case k.Method == model.PaymentBank:
			b.BankUZS = b.BankUZS.Add(v)
		}
	}

	if err := s.cache.Set(ctx, balancesCacheKey, b); err != nil {
		log.Warn().Err(err).Msg("balances cache write failed")
	}
	return b, nil
}

func (s *treasuryService) opening() (ledger.Balances, error) {
	var b ledger.Balances
	var err error
	if b.CashUSD, err = ledger.FromFloat("OPENING_CASH_USD", s.cfg.OpeningCashUSD); err != nil {
		return b, err
	}
	if b.CashUZS, err = ledger.FromFloat("OPENING_CASH_UZS", s.cfg.OpeningCashUZS); err != nil {
		return b, err
	}
	if b.CardUZS, err = ledger.FromFloat("OPENING_CARD_UZS", s.cfg.OpeningCardUZS); err != nil {
		return b, err
	}
	if b.BankUZS, err = ledger.FromFloat("OPENING_BANK_UZS", s.cfg.OpeningBankUZS); err != nil {
		return b, err
	}
	return b, nil
}

func (s *treasuryService) GetBalances(ctx context.Context) (*dto.BalancesResponse, error) {
	b, err := s.Balances(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.BalancesResponse{CashUSD: b.CashUSD, CashUZS: b.CashUZS, CardUZS: b.CardUZS, BankUZS: b.BankUZS}, nil
}

func (s *treasuryService) Invalidate(ctx context.Context) {
	if err := s.cache.Delete(ctx, balancesCacheKey); err != nil {
		log.Warn().Err(err).Msg("balances cache invalidation failed")
	}
}

// RecordMovement books a manual deposit or withdrawal. Bank and card
// accounts are UZS only; a withdrawal may not take a balance below zero.
func (s *treasuryService) RecordMovement(ctx context.Context, req dto.MovementRequest) (*dto.TransactionResponse, error) {
	method := ledger.PaymentMethod(req.Method)
	currency, err := ledger.ParseCurrency(req.Currency)
	if err != nil {
		return nil, &ledger.ValidationError{Fields: map[string]string{"currency": err.Error()}}
	}
	if method != ledger.Cash && currency != ledger.UZS {
		return nil, &ledger.ValidationError{Fields: map[string]string{"currency": req.Method + " accounts are UZS only"}}
	}
	if !req.Amount.IsPositive() {
		return nil, &ledger.ValidationError{Fields: map[string]string{"amount": "must be greater than zero"}}
	}

	release, err := lockLedger(ctx, s.locker)
	if err != nil {
		return nil, err
	}
	defer release()

	if req.Type == model.TxWithdrawal {
		balances, err := s.Balances(ctx)
		if err != nil {
			return nil, err
		}
		if avail := balances.Available(method, currency); avail.LessThan(req.Amount) {
			return nil, &ledger.InsufficientFundsError{Method: method, Currency: currency, Required: req.Amount, Available: avail}
		}
	}

	date := s.now()
	if req.Date != nil {
		date = *req.Date
	}
	t := &model.Transaction{
		ID:          uuid.New(),
		Date:        date,
		Type:        req.Type,
		Amount:      req.Amount,
		Currency:    string(currency),
		Method:      req.Method,
		Description: strings.TrimSpace(req.Description),
	}
	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		return s.repo.CreateTx(tx, t)
	})
	if err != nil {
		return nil, err
	}

	s.Invalidate(ctx)
	resp := toTransactionResponse(*t)
	s.notify.committed(ctx, realtime.EventTreasuryMovement, resp, worker.SheetsSyncPayload{
		TransactionIDs: []string{t.ID.String()},
	})
	return &resp, nil
}

func (s *treasuryService) ListTransactions(ctx context.Context, filter dto.TransactionFilter) (*dto.TransactionListResponse, error) {
	f := repository.TransactionFilter{
		Type:   filter.Type,
		Method: filter.Method,
		Page:   page(filter.Page, filter.Limit),
	}
	if filter.RelatedID != "" {
		id, err := uuid.Parse(filter.RelatedID)
		if err != nil {
			return nil, &ledger.ValidationError{Fields: map[string]string{"related_id": "must be a UUID"}}
		}
		f.RelatedID = &id
	}
	var err error
	if f.From, err = parseDay("from", filter.From); err != nil {
		return nil, err
	}
	if f.To, err = parseDay("to", filter.To); err != nil {
		return nil, err
	}
	if f.To != nil {
		next := f.To.AddDate(0, 0, 1)
		f.To = &next
	}

	rows, total, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	return &dto.TransactionListResponse{
		Data:  toTransactionResponses(rows),
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}
