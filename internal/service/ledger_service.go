package service

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"zold-node/internal/core/domain"
	"zold-node/internal/core/ports"
	"zold-node/internal/metrics"
	"zold-node/pkg/apperror"
	"zold-node/pkg/logger"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/blake2b"
)

// LedgerConfig holds the cache lifetimes used by the ledger service.
type LedgerConfig struct {
	BalanceTTL time.Duration
	DigestTTL  time.Duration
}

// LedgerServiceImpl implements ports.LedgerService.
type LedgerServiceImpl struct {
	repo     ports.WalletRepository
	balances ports.BalanceCache    // optional
	digests  ports.PushDigestCache // optional
	locks    *KeyedMutex
	metrics  *metrics.Metrics // optional
	cfg      LedgerConfig
	log      zerolog.Logger
}

// NewLedgerService creates a new LedgerServiceImpl. The caches and metrics
// may be nil.
func NewLedgerService(
	repo ports.WalletRepository,
	balances ports.BalanceCache,
	digests ports.PushDigestCache,
	m *metrics.Metrics,
	cfg LedgerConfig,
	log zerolog.Logger,
) *LedgerServiceImpl {
	return &LedgerServiceImpl{
		repo:     repo,
		balances: balances,
		digests:  digests,
		locks:    NewKeyedMutex(),
		metrics:  m,
		cfg:      cfg,
		log:      log,
	}
}

// Pull returns the stored copy of a wallet.
func (s *LedgerServiceImpl) Pull(ctx context.Context, id domain.Id) (*domain.Wallet, error) {
	w, err := s.repo.Get(ctx, id)
	if err != nil {
		s.recordPull("error")
		return nil, apperror.ErrDatabaseError(fmt.Errorf("get wallet %s: %w", id, err))
	}
	if w == nil {
		s.recordPull("not_found")
		return nil, apperror.ErrWalletNotFound(id.String())
	}
	s.recordPull("found")
	return w, nil
}

// Push merges a serialized wallet into the stored copy.
//
// Pipeline: parse -> identity check -> digest fast path -> resolve payer
// ledgers -> per-wallet lock -> merge and persist -> refresh caches.
func (s *LedgerServiceImpl) Push(ctx context.Context, id domain.Id, body []byte) (*ports.PushResult, error) {
	start := time.Now()

	remote, err := domain.ParseWallet(body)
	if err != nil {
		s.recordPush(metrics.OutcomeMalformed, start)
		return nil, apperror.ErrMalformedWallet(err)
	}
	if remote.ID() != id {
		s.recordPush(metrics.OutcomeMismatch, start)
		return nil, apperror.ErrIdentityMismatch(
			fmt.Errorf("%w: pushed to %s but document is %s", domain.ErrIdentityMismatch, id, remote.ID()))
	}

	digest := pushDigest(body)
	if stored := s.seenBefore(ctx, id, digest); stored != nil {
		s.recordPush(metrics.OutcomeDuplicate, start)
		return &ports.PushResult{Wallet: stored, Unchanged: true}, nil
	}

	// Payer ledgers come from storage and are looked up before the lock is
	// taken; the repository must not be re-entered from inside Update.
	payers, err := s.resolvePayers(ctx, remote)
	if err != nil {
		s.recordPush(metrics.OutcomeError, start)
		return nil, s.storageError(fmt.Errorf("resolve payers for %s: %w", id, err))
	}

	s.locks.Lock(id)
	defer s.locks.Unlock(id)

	var (
		report  *domain.MergeReport
		created bool
	)
	stored, err := s.repo.Update(ctx, id, func(current *domain.Wallet) (*domain.Wallet, error) {
		if current == nil {
			created = true
			current = domain.NewWallet()
			if err := current.Init(remote.ID(), remote.Key()); err != nil {
				return nil, err
			}
		}
		merged, rep, err := domain.Merge(current, remote, payers)
		if err != nil {
			return nil, err
		}
		report = rep
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !created && !rep.Changed() {
			return nil, nil
		}
		return merged, nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrIdentityMismatch) {
			s.recordPush(metrics.OutcomeMismatch, start)
			return nil, apperror.ErrIdentityMismatch(err)
		}
		s.recordPush(metrics.OutcomeError, start)
		return nil, s.storageError(fmt.Errorf("update wallet %s: %w", id, err))
	}

	wlog := logger.ForWallet(s.log, id.String())
	for _, r := range report.Rejected {
		wlog.Warn().
			Uint64("seq", r.Transaction.Seq).
			Str("bnf", r.Transaction.Bnf.String()).
			Str("amount", r.Transaction.Amount.String()).
			Err(r.Err).
			Msg("transaction rejected during merge")
	}

	result := &ports.PushResult{
		Wallet:    stored,
		Accepted:  len(report.Added),
		Rejected:  len(report.Rejected),
		Unchanged: !created && !report.Changed(),
	}

	s.refreshBalance(ctx, stored)
	// A body with rejected entries may merge fully once their payers are
	// stored, so only clean merges short-circuit a repeat push.
	if s.digests != nil && result.Rejected == 0 {
		if err := s.digests.Remember(ctx, id, digest, s.cfg.DigestTTL); err != nil {
			wlog.Warn().Err(err).Msg("failed to remember push digest")
		}
	}

	outcome := metrics.OutcomeMerged
	if result.Unchanged {
		outcome = metrics.OutcomeUnchanged
	}
	s.recordPush(outcome, start)
	if s.metrics != nil {
		s.metrics.RecordMerge(result.Accepted, result.Rejected, stored.Len())
	}

	wlog.Info().
		Bool("created", created).
		Int("accepted", result.Accepted).
		Int("rejected", result.Rejected).
		Str("balance", stored.Balance().String()).
		Msg("wallet pushed")

	return result, nil
}

// Balance returns the balance of a stored wallet. Snapshots are served from
// the balance cache when one is configured; no lock is taken. Only pushes
// write snapshots, since a read here may already be stale.
func (s *LedgerServiceImpl) Balance(ctx context.Context, id domain.Id) (domain.Amount, error) {
	if s.balances != nil {
		balance, ok, err := s.balances.Get(ctx, id)
		if err != nil {
			s.log.Warn().Err(err).Str("wallet", id.String()).Msg("balance cache read failed, falling through to storage")
		} else if ok {
			s.recordBalanceLookup("cache")
			return balance, nil
		}
	}

	w, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Zero, apperror.ErrDatabaseError(fmt.Errorf("get wallet %s: %w", id, err))
	}
	if w == nil {
		return domain.Zero, apperror.ErrWalletNotFound(id.String())
	}
	s.recordBalanceLookup("storage")
	return w.Balance(), nil
}

// seenBefore returns the stored wallet when the exact same body has already
// been merged into it.
func (s *LedgerServiceImpl) seenBefore(ctx context.Context, id domain.Id, digest string) *domain.Wallet {
	if s.digests == nil {
		return nil
	}
	seen, err := s.digests.Seen(ctx, id, digest)
	if err != nil {
		s.log.Warn().Err(err).Str("wallet", id.String()).Msg("push digest check failed, merging anyway")
		return nil
	}
	if !seen {
		return nil
	}
	stored, err := s.repo.Get(ctx, id)
	if err != nil || stored == nil {
		return nil
	}
	return stored
}

// resolvePayers loads the stored ledger of every wallet that paid a credit in
// w. Payers this node does not store are left out, so their credits fail
// validation.
func (s *LedgerServiceImpl) resolvePayers(ctx context.Context, w *domain.Wallet) (domain.Ledgers, error) {
	payers := domain.Ledgers{}
	missing := make(map[domain.Id]struct{})
	for _, tx := range w.Transactions() {
		if !tx.IsCredit() {
			continue
		}
		payer := tx.Bnf
		if _, ok := payers[payer]; ok {
			continue
		}
		if _, ok := missing[payer]; ok {
			continue
		}
		stored, err := s.repo.Get(ctx, payer)
		if err != nil {
			return nil, err
		}
		if stored == nil {
			missing[payer] = struct{}{}
			continue
		}
		payers[payer] = stored
	}
	return payers, nil
}

func (s *LedgerServiceImpl) refreshBalance(ctx context.Context, w *domain.Wallet) {
	if s.balances == nil || w == nil {
		return
	}
	if err := s.balances.Set(ctx, w.ID(), w.Balance(), s.cfg.BalanceTTL); err != nil {
		s.log.Warn().Err(err).Str("wallet", w.ID().String()).Msg("failed to refresh balance snapshot")
	}
}

func (s *LedgerServiceImpl) storageError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return apperror.ErrRequestCanceled(err)
	}
	return apperror.ErrDatabaseError(err)
}

func (s *LedgerServiceImpl) recordPush(outcome string, start time.Time) {
	if s.metrics != nil {
		s.metrics.RecordPush(outcome, time.Since(start).Seconds())
	}
}

func (s *LedgerServiceImpl) recordPull(outcome string) {
	if s.metrics != nil {
		s.metrics.RecordPull(outcome)
	}
}

func (s *LedgerServiceImpl) recordBalanceLookup(source string) {
	if s.metrics != nil {
		s.metrics.RecordBalanceLookup(source)
	}
}

// pushDigest fingerprints a pushed body.
func pushDigest(body []byte) string {
	sum := blake2b.Sum256(body)
	return hex.EncodeToString(sum[:])
}
