package memory

import (
	"bytes"
	"crypto/ed25519"

	"github.com/holiman/uint256"

	"github.com/code-payments/hashlock-escrow/pkg/solana"
	"github.com/code-payments/hashlock-escrow/pkg/solana/runtime"
	"github.com/code-payments/hashlock-escrow/pkg/solana/system"
)

const maxInvokeDepth = 4

// transaction is the working copy of the ledger for a single transaction.
type transaction struct {
	programs map[string]runtime.Processor
	accounts map[string]*runtime.Account
}

type privileges struct {
	isSigner   bool
	isWritable bool
}

// frame is a single program invocation. It is the Invoker handed to the
// program so it can call into other programs.
type frame struct {
	tx         *transaction
	program    ed25519.PublicKey
	depth      int
	privileges map[string]privileges
	pre        map[string]*runtime.Account
}

func (tx *transaction) load(key ed25519.PublicKey) *runtime.Account {
	account, ok := tx.accounts[string(key)]
	if !ok {
		account = &runtime.Account{Owner: copyKey(system.ProgramKey[:])}
		tx.accounts[string(key)] = account
	}
	return account
}

func (tx *transaction) invoke(caller *frame, ix solana.Instruction, signers []runtime.SignerSeeds, depth int) error {
	if depth > maxInvokeDepth {
		return solana.InstructionErrorCallDepth
	}

	processor, ok := tx.programs[string(ix.Program)]
	if !ok {
		return solana.InstructionErrorUnsupportedProgramID
	}

	derived := make(map[string]struct{})
	if caller != nil {
		for _, seeds := range signers {
			addr, err := solana.CreateProgramAddress(caller.program, seeds...)
			if err != nil {
				return solana.InstructionErrorInvalidSeeds
			}
			derived[string(addr)] = struct{}{}
		}
	}

	f := &frame{
		tx:         tx,
		program:    ix.Program,
		depth:      depth,
		privileges: make(map[string]privileges),
		pre:        make(map[string]*runtime.Account),
	}

	for _, meta := range ix.Accounts {
		key := string(meta.PublicKey)

		if caller != nil {
			granted, ok := caller.privileges[key]
			if !ok {
				return solana.InstructionErrorMissingAccount
			}
			if meta.IsWritable && !granted.isWritable {
				return solana.InstructionErrorPrivilegeEscalation
			}
			if meta.IsSigner && !granted.isSigner {
				if _, ok := derived[key]; !ok {
					return solana.InstructionErrorPrivilegeEscalation
				}
			}
		}

		merged := f.privileges[key]
		merged.isSigner = merged.isSigner || meta.IsSigner
		merged.isWritable = merged.isWritable || meta.IsWritable
		f.privileges[key] = merged

		if _, ok := f.pre[key]; !ok {
			f.pre[key] = tx.load(meta.PublicKey).Clone()
		}
	}

	accounts := make([]*runtime.AccountInfo, len(ix.Accounts))
	for i, meta := range ix.Accounts {
		granted := f.privileges[string(meta.PublicKey)]
		accounts[i] = &runtime.AccountInfo{
			Key:        meta.PublicKey,
			IsSigner:   granted.isSigner,
			IsWritable: granted.isWritable,
			Account:    tx.accounts[string(meta.PublicKey)],
		}
	}

	if err := processor.Process(ix.Program, accounts, ix.Data, f); err != nil {
		return err
	}

	return f.verify()
}

// Invoke implements runtime.Invoker.
func (f *frame) Invoke(ix solana.Instruction, signers ...runtime.SignerSeeds) error {
	if err := f.verify(); err != nil {
		return err
	}

	if err := f.tx.invoke(f, ix, signers, f.depth+1); err != nil {
		return err
	}

	for key := range f.pre {
		f.pre[key] = f.tx.accounts[key].Clone()
	}
	return nil
}

// verify checks the changes made since the frame started, or since its last
// cross program invocation, against the runtime's account rules.
func (f *frame) verify() error {
	preTotal := new(uint256.Int)
	postTotal := new(uint256.Int)

	for key, pre := range f.pre {
		post := f.tx.accounts[key]

		preTotal.Add(preTotal, uint256.NewInt(pre.Lamports))
		postTotal.Add(postTotal, uint256.NewInt(post.Lamports))

		ownerChanged := !bytes.Equal(pre.Owner, post.Owner)
		dataChanged := !bytes.Equal(pre.Data, post.Data)
		lamportsChanged := pre.Lamports != post.Lamports

		if !ownerChanged && !dataChanged && !lamportsChanged && pre.Executable == post.Executable {
			continue
		}

		if !f.privileges[key].isWritable || pre.Executable || pre.Executable != post.Executable {
			return solana.InstructionErrorReadonlyDataModified
		}

		ownedByProgram := bytes.Equal(pre.Owner, f.program)
		if (ownerChanged || dataChanged) && !ownedByProgram {
			return solana.InstructionErrorExternalAccountDataMod
		}
		if post.Lamports < pre.Lamports && !ownedByProgram {
			return solana.InstructionErrorExternalAccountDataMod
		}
	}

	if !preTotal.Eq(postTotal) {
		return solana.InstructionErrorUnbalancedInstruction
	}
	return nil
}
