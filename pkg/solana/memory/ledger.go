// Package memory provides an in-memory ledger that executes programs with
// the account, signer and atomicity rules of the Solana runtime.
package memory

import (
	"bytes"
	"crypto/ed25519"
	"sync"
	"time"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/hashlock-escrow/pkg/solana"
	"github.com/code-payments/hashlock-escrow/pkg/solana/runtime"
	"github.com/code-payments/hashlock-escrow/pkg/solana/system"
	"github.com/code-payments/hashlock-escrow/pkg/solana/token"
)

var (
	ErrAccountNotFound     = errors.New("account not found")
	ErrInvalidTokenAccount = errors.New("invalid token account")
	ErrInvalidMint         = errors.New("invalid mint")
	ErrProgramExists       = errors.New("program already registered")
)

var (
	sysvarOwnerKey = mustBase58Decode("Sysvar1111111111111111111111111111111111111")
	loaderKey      = mustBase58Decode("BPFLoaderUpgradeab1e11111111111111111111111")
)

// Ledger is a single node, in-memory ledger. Transactions execute serially
// and either commit every account change or none of them.
type Ledger struct {
	log *logrus.Entry

	mu       sync.Mutex
	accounts map[string]*runtime.Account
	programs map[string]runtime.Processor
	rent     system.Rent
	clock    system.Clock
}

// NewLedger returns a ledger with the system, token and associated token
// account programs installed.
func NewLedger() *Ledger {
	l := &Ledger{
		log:      logrus.StandardLogger().WithField("type", "solana/memory"),
		accounts: make(map[string]*runtime.Account),
		programs: make(map[string]runtime.Processor),
		rent:     system.DefaultRent,
		clock: system.Clock{
			Slot:          1,
			UnixTimestamp: time.Now().Unix(),
		},
	}

	l.install(system.ProgramKey[:], runtime.ProcessorFunc(processSystem))
	l.install(token.ProgramKey, runtime.ProcessorFunc(processToken))
	l.install(token.AssociatedTokenAccountProgramKey, runtime.ProcessorFunc(processAssociatedTokenAccount))

	l.accounts[string(system.RentSysVar)] = &runtime.Account{
		Owner:    sysvarOwnerKey,
		Lamports: 1,
		Data:     l.rent.Marshal(),
	}
	l.writeClock()

	return l
}

// RegisterProgram installs a program at the provided address.
func (l *Ledger) RegisterProgram(programID ed25519.PublicKey, processor runtime.Processor) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.programs[string(programID)]; ok {
		return ErrProgramExists
	}

	l.install(programID, processor)
	return nil
}

func (l *Ledger) install(programID ed25519.PublicKey, processor runtime.Processor) {
	l.programs[string(programID)] = processor
	l.accounts[string(programID)] = &runtime.Account{
		Owner:      loaderKey,
		Lamports:   1,
		Executable: true,
	}
}

// Execute runs the instructions as one transaction, treating every account
// marked as a signer as having signed it.
func (l *Ledger) Execute(instructions ...solana.Instruction) error {
	var signers []ed25519.PublicKey
	for _, ix := range instructions {
		signers = append(signers, ix.Signers()...)
	}
	return l.ExecuteTransaction(signers, instructions...)
}

// ExecuteTransaction runs the instructions as one transaction signed by the
// provided keys. A failing instruction is reported as a solana.InstructionError
// and leaves the ledger untouched.
func (l *Ledger) ExecuteTransaction(signers []ed25519.PublicKey, instructions ...solana.Instruction) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	signed := make(map[string]struct{})
	for _, signer := range signers {
		signed[string(signer)] = struct{}{}
	}

	tx := &transaction{
		programs: l.programs,
		accounts: make(map[string]*runtime.Account, len(l.accounts)),
	}
	for key, account := range l.accounts {
		tx.accounts[key] = account.Clone()
	}

	for i, ix := range instructions {
		for _, meta := range ix.Accounts {
			if !meta.IsSigner {
				continue
			}
			if _, ok := signed[string(meta.PublicKey)]; !ok {
				return solana.InstructionError{Index: i, Err: solana.InstructionErrorMissingRequiredSignature}
			}
		}

		if err := tx.invoke(nil, ix, nil, 0); err != nil {
			l.log.
				WithError(err).
				WithField("index", i).
				WithField("program", base58.Encode(ix.Program)).
				Debug("transaction failed")
			return solana.InstructionError{Index: i, Err: err}
		}
	}

	for key, account := range tx.accounts {
		if account.Lamports == 0 && len(account.Data) == 0 && !account.Executable {
			delete(tx.accounts, key)
		}
	}
	l.accounts = tx.accounts

	l.clock.Slot++
	l.writeClock()

	return nil
}

// SetUnixTimestamp sets the time reported by the clock sysvar.
func (l *Ledger) SetUnixTimestamp(ts int64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.clock.UnixTimestamp = ts
	l.writeClock()
}

// Clock returns the current clock sysvar value.
func (l *Ledger) Clock() system.Clock {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.clock
}

// Rent returns the rent configuration of the ledger.
func (l *Ledger) Rent() system.Rent {
	return l.rent
}

func (l *Ledger) writeClock() {
	l.accounts[string(system.ClockSysVar)] = &runtime.Account{
		Owner:    sysvarOwnerKey,
		Lamports: 1,
		Data:     l.clock.Marshal(),
	}
}

// Airdrop credits lamports to the account, creating it if needed.
func (l *Ledger) Airdrop(key ed25519.PublicKey, lamports uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	account, ok := l.accounts[string(key)]
	if !ok {
		account = &runtime.Account{Owner: copyKey(system.ProgramKey[:])}
		l.accounts[string(key)] = account
	}
	account.Lamports += lamports
}

// CreateMint creates an initialized mint at a new address.
func (l *Ledger) CreateMint(authority ed25519.PublicKey, decimals uint8) (ed25519.PublicKey, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	key, err := newKey()
	if err != nil {
		return nil, err
	}

	mint := token.Mint{
		MintAuthority: authority,
		Decimals:      decimals,
		IsInitialized: true,
	}
	l.accounts[string(key)] = &runtime.Account{
		Owner:    copyKey(token.ProgramKey),
		Lamports: l.rent.MinimumBalance(token.MintSize),
		Data:     mint.Marshal(),
	}
	return key, nil
}

// CreateTokenAccount creates an initialized token account at a new address
// holding amount freshly minted tokens.
func (l *Ledger) CreateTokenAccount(owner, mint ed25519.PublicKey, amount uint64) (ed25519.PublicKey, error) {
	key, err := newKey()
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.createTokenAccount(key, owner, mint, amount); err != nil {
		return nil, err
	}
	return key, nil
}

// CreateAssociatedTokenAccount creates the associated token account of the
// owner holding amount freshly minted tokens.
func (l *Ledger) CreateAssociatedTokenAccount(owner, mint ed25519.PublicKey, amount uint64) (ed25519.PublicKey, error) {
	key, err := token.GetAssociatedAccount(owner, mint)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.accounts[string(key)]; ok {
		return nil, errors.Errorf("account %s already exists", base58.Encode(key))
	}
	if err := l.createTokenAccount(key, owner, mint, amount); err != nil {
		return nil, err
	}
	return key, nil
}

func (l *Ledger) createTokenAccount(key, owner, mint ed25519.PublicKey, amount uint64) error {
	if err := l.mintTo(mint, amount); err != nil {
		return err
	}

	account := token.Account{
		Mint:   copyKey(mint),
		Owner:  copyKey(owner),
		Amount: amount,
		State:  token.AccountStateInitialized,
	}
	l.accounts[string(key)] = &runtime.Account{
		Owner:    copyKey(token.ProgramKey),
		Lamports: l.rent.MinimumBalance(token.AccountSize),
		Data:     account.Marshal(),
	}
	return nil
}

// MintTo mints amount tokens into an existing token account.
func (l *Ledger) MintTo(key ed25519.PublicKey, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	stored, account, err := l.getTokenAccount(key)
	if err != nil {
		return err
	}
	if err := l.mintTo(account.Mint, amount); err != nil {
		return err
	}

	account.Amount += amount
	stored.Data = account.Marshal()
	return nil
}

func (l *Ledger) mintTo(key ed25519.PublicKey, amount uint64) error {
	stored, ok := l.accounts[string(key)]
	if !ok || !bytes.Equal(stored.Owner, token.ProgramKey) {
		return ErrInvalidMint
	}

	var mint token.Mint
	if !mint.Unmarshal(stored.Data) {
		return ErrInvalidMint
	}
	if mint.Supply+amount < mint.Supply {
		return errors.New("mint supply overflow")
	}

	mint.Supply += amount
	stored.Data = mint.Marshal()
	return nil
}

// GetAccount returns a copy of the account stored at the address.
func (l *Ledger) GetAccount(key ed25519.PublicKey) (*runtime.Account, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	account, ok := l.accounts[string(key)]
	if !ok {
		return nil, ErrAccountNotFound
	}
	return account.Clone(), nil
}

// GetTokenAccount returns the decoded token account stored at the address.
func (l *Ledger) GetTokenAccount(key ed25519.PublicKey) (*token.Account, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, account, err := l.getTokenAccount(key)
	return account, err
}

func (l *Ledger) getTokenAccount(key ed25519.PublicKey) (*runtime.Account, *token.Account, error) {
	stored, ok := l.accounts[string(key)]
	if !ok {
		return nil, nil, ErrAccountNotFound
	}
	if !bytes.Equal(stored.Owner, token.ProgramKey) {
		return nil, nil, ErrInvalidTokenAccount
	}

	var account token.Account
	if !account.Unmarshal(stored.Data) {
		return nil, nil, ErrInvalidTokenAccount
	}
	return stored, &account, nil
}

func newKey() (ed25519.PublicKey, error) {
	pub, _, err := ed25519.GenerateKey(nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate key")
	}
	return pub, nil
}

func copyKey(key ed25519.PublicKey) ed25519.PublicKey {
	res := make(ed25519.PublicKey, len(key))
	copy(res, key)
	return res
}

func mustBase58Decode(value string) []byte {
	decoded, err := base58.Decode(value)
	if err != nil {
		panic(err)
	}
	return decoded
}
