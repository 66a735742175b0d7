package sync

import (
	"context"
	"crypto/ed25519"
	base "sync"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"

	"github.com/code-payments/hashlock-escrow/pkg/data/escrow"
	"github.com/code-payments/hashlock-escrow/pkg/rate"
	"github.com/code-payments/hashlock-escrow/pkg/solana"
	escrow_program "github.com/code-payments/hashlock-escrow/pkg/solana/escrow"
	sync_util "github.com/code-payments/hashlock-escrow/pkg/sync"
)

var (
	ErrEscrowAccountNotFound = errors.New("escrow account not found")
	ErrNotEscrowAccount      = errors.New("account is not an escrow account")
)

const (
	rpcGetAccountInfo     = "getAccountInfo"
	rpcGetProgramAccounts = "getProgramAccounts"
)

type Config struct {
	ProgramID  ed25519.PublicKey
	Commitment solana.Commitment

	// Workers is the number of escrows synced concurrently by SyncAll
	Workers uint

	// Limiter paces RPC calls, keyed by RPC method
	Limiter rate.Limiter
}

// Syncer keeps escrow records up to date with the escrow accounts observed
// on the blockchain.
type Syncer struct {
	log  *logrus.Entry
	conf Config

	client solana.Client
	store  escrow.Store

	escrowLocks *sync_util.StripedLock
}

func New(client solana.Client, store escrow.Store, conf Config) *Syncer {
	if len(conf.ProgramID) == 0 {
		conf.ProgramID = escrow_program.PROGRAM_ID
	}
	if len(conf.Commitment.Commitment) == 0 {
		conf.Commitment = solana.CommitmentFinalized
	}
	if conf.Workers == 0 {
		conf.Workers = 8
	}
	if conf.Limiter == nil {
		conf.Limiter = &rate.NoLimiter{}
	}

	return &Syncer{
		log:         logrus.StandardLogger().WithField("type", "escrow/sync"),
		conf:        conf,
		client:      client,
		store:       store,
		escrowLocks: sync_util.NewStripedLock(64),
	}
}

// Sync fetches the escrow account at the address and saves its latest state.
// Observations at or before the slot of the stored record leave it untouched.
func (s *Syncer) Sync(ctx context.Context, address ed25519.PublicKey) (*escrow.Record, error) {
	log := s.log.WithField("escrow", base58.Encode(address))

	mu := s.escrowLocks.Get(address)
	mu.Lock()
	defer mu.Unlock()

	if err := s.conf.Limiter.Wait(ctx, rpcGetAccountInfo); err != nil {
		return nil, err
	}

	info, slot, err := s.client.GetAccountInfoWithSlot(ctx, address, s.conf.Commitment)
	if errors.Is(err, solana.ErrNoAccountInfo) {
		return nil, ErrEscrowAccountNotFound
	} else if err != nil {
		log.WithError(err).Warn("failure getting escrow account")
		return nil, errors.Wrap(err, "error getting escrow account")
	}

	return s.sync(ctx, log, address, info, slot)
}

// SyncAll lists every escrow account owned by the program and saves the
// latest state of each. It returns the number of escrows synced along with
// the combined errors of those that failed.
func (s *Syncer) SyncAll(ctx context.Context) (int, error) {
	if err := s.conf.Limiter.Wait(ctx, rpcGetProgramAccounts); err != nil {
		return 0, err
	}

	accounts, slot, err := s.client.GetProgramAccounts(ctx, s.conf.ProgramID, escrow_program.EscrowAccountSize, s.conf.Commitment)
	if err != nil {
		s.log.WithError(err).Warn("failure listing escrow accounts")
		return 0, errors.Wrap(err, "error listing escrow accounts")
	}

	work := sync_util.NewStripedChannel[solana.KeyedAccountInfo](s.conf.Workers, uint(len(accounts)))
	for _, account := range accounts {
		work.BlockingSend(account.PublicKey, account)
	}
	work.Close()

	var (
		mu     base.Mutex
		synced int
		errs   error
		wg     base.WaitGroup
	)
	for _, channel := range work.Channels() {
		wg.Add(1)

		go func(channel <-chan solana.KeyedAccountInfo) {
			defer wg.Done()

			for account := range channel {
				log := s.log.WithField("escrow", base58.Encode(account.PublicKey))

				err := func() error {
					if err := ctx.Err(); err != nil {
						return err
					}

					lock := s.escrowLocks.Get(account.PublicKey)
					lock.Lock()
					defer lock.Unlock()

					_, err := s.sync(ctx, log, account.PublicKey, account.AccountInfo, slot)
					return err
				}()

				mu.Lock()
				if err != nil {
					errs = multierr.Append(errs, errors.Wrap(err, base58.Encode(account.PublicKey)))
				} else {
					synced++
				}
				mu.Unlock()
			}
		}(channel)
	}
	wg.Wait()

	s.log.
		WithField("slot", slot).
		WithField("accounts", len(accounts)).
		WithField("synced", synced).
		Info("escrow accounts synced")

	return synced, errs
}

func (s *Syncer) sync(ctx context.Context, log *logrus.Entry, address ed25519.PublicKey, info solana.AccountInfo, slot uint64) (*escrow.Record, error) {
	data, err := s.decode(address, info)
	if err != nil {
		log.WithError(err).Debug("account is not an escrow")
		return nil, err
	}

	record, err := s.store.GetByAddress(ctx, base58.Encode(address))
	switch err {
	case nil:
		err = record.UpdateFromProgramAccount(data, slot)
	case escrow.ErrEscrowNotFound:
		record, err = escrow.NewRecordFromProgramAccount(address, data, slot)
	default:
		return nil, errors.Wrap(err, "error getting escrow record")
	}

	if err == escrow.ErrStaleEscrowState {
		log.WithField("slot", slot).Debug("escrow record is already up to date")
		return record, nil
	} else if err != nil {
		log.WithError(err).Warn("escrow account cannot be applied to record")
		return nil, err
	}

	err = s.store.Save(ctx, record)
	if err == escrow.ErrStaleEscrowState {
		return s.store.GetByAddress(ctx, record.Address)
	} else if err != nil {
		log.WithError(err).Warn("failure saving escrow record")
		return nil, errors.Wrap(err, "error saving escrow record")
	}

	log.
		WithField("status", record.Status.String()).
		WithField("slot", slot).
		Debug("escrow record synced")

	return record, nil
}

// decode parses account data as an escrow owned by the program, and checks
// the address is the one derived from the escrow's payment hash.
func (s *Syncer) decode(address ed25519.PublicKey, info solana.AccountInfo) (*escrow_program.EscrowAccount, error) {
	if !info.Owner.Equal(s.conf.ProgramID) {
		return nil, errors.Wrap(ErrNotEscrowAccount, "unexpected owner")
	}

	var data escrow_program.EscrowAccount
	if err := data.Unmarshal(info.Data); err != nil {
		return nil, errors.Wrap(ErrNotEscrowAccount, err.Error())
	}

	if data.Version != escrow_program.EscrowAccountVersion {
		return nil, errors.Wrapf(ErrNotEscrowAccount, "unsupported version %d", data.Version)
	}

	if !solana.VerifyProgramAddress(s.conf.ProgramID, address, data.Bump, escrow_program.EscrowPrefix, data.PaymentHash[:]) {
		return nil, errors.Wrap(ErrNotEscrowAccount, "address does not match payment hash")
	}

	return &data, nil
}
