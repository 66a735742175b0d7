package memory

import (
	"crypto/ed25519"
	"encoding/binary"

	"github.com/code-payments/hashlock-escrow/pkg/solana"
	"github.com/code-payments/hashlock-escrow/pkg/solana/runtime"
	"github.com/code-payments/hashlock-escrow/pkg/solana/system"
	"github.com/code-payments/hashlock-escrow/pkg/solana/token"
)

// toInstruction rebuilds the instruction a builtin is processing, so the
// package decoders can be reused.
func toInstruction(programID ed25519.PublicKey, accounts []*runtime.AccountInfo, data []byte) solana.Instruction {
	metas := make([]solana.AccountMeta, len(accounts))
	for i, account := range accounts {
		metas[i] = solana.AccountMeta{
			PublicKey:  account.Key,
			IsSigner:   account.IsSigner,
			IsWritable: account.IsWritable,
		}
	}
	return solana.NewInstruction(programID, data, metas...)
}

func processSystem(programID ed25519.PublicKey, accounts []*runtime.AccountInfo, data []byte, _ runtime.Invoker) error {
	if len(data) < 4 {
		return solana.InstructionErrorInvalidInstructionData
	}
	if len(accounts) < 2 {
		return solana.InstructionErrorNotEnoughAccountKeys
	}

	ix := toInstruction(programID, accounts, data)

	switch binary.LittleEndian.Uint32(data) {
	case commandSystemCreateAccount:
		decompiled, err := system.DecompileCreateAccount(ix)
		if err != nil {
			return solana.InstructionErrorInvalidInstructionData
		}

		funder, address := accounts[0], accounts[1]
		if !funder.IsSigner || !address.IsSigner {
			return solana.InstructionErrorMissingRequiredSignature
		}
		if address.Lamports > 0 || !address.DataIsEmpty() || !address.IsOwnedBy(system.ProgramKey[:]) {
			return system.ErrorAccountAlreadyInUse
		}
		if decompiled.Size > system.MaxPermittedDataLength {
			return system.ErrorInvalidAccountDataLength
		}
		if funder.Lamports < decompiled.Lamports {
			return system.ErrorResultWithNegativeLamports
		}

		funder.Lamports -= decompiled.Lamports
		address.Lamports += decompiled.Lamports
		address.Data = make([]byte, decompiled.Size)
		address.Owner = copyKey(decompiled.Owner)
		return nil

	case commandSystemTransfer:
		decompiled, err := system.DecompileTransfer(ix)
		if err != nil {
			return solana.InstructionErrorInvalidInstructionData
		}

		from, to := accounts[0], accounts[1]
		if !from.IsSigner {
			return solana.InstructionErrorMissingRequiredSignature
		}
		if from.Lamports < decompiled.Lamports {
			return system.ErrorResultWithNegativeLamports
		}

		from.Lamports -= decompiled.Lamports
		to.Lamports += decompiled.Lamports
		return nil

	default:
		return solana.InstructionErrorInvalidInstructionData
	}
}

const (
	commandSystemCreateAccount uint32 = 0
	commandSystemTransfer      uint32 = 2
)

func processToken(programID ed25519.PublicKey, accounts []*runtime.AccountInfo, data []byte, _ runtime.Invoker) error {
	ix := toInstruction(programID, accounts, data)

	cmd, err := token.GetCommand(ix)
	if err != nil {
		return token.ErrorInvalidInstruction
	}

	switch cmd {
	case token.CommandInitializeAccount:
		if len(accounts) < 4 {
			return solana.InstructionErrorNotEnoughAccountKeys
		}
		decompiled, err := token.DecompileInitializeAccount(ix)
		if err != nil {
			return token.ErrorInvalidInstruction
		}

		account := accounts[0]
		if !account.IsOwnedBy(token.ProgramKey) {
			return solana.InstructionErrorIncorrectProgramID
		}
		if len(account.Data) != token.AccountSize {
			return solana.InstructionErrorInvalidAccountData
		}
		var existing token.Account
		if existing.Unmarshal(account.Data) {
			return token.ErrorAlreadyInUse
		}

		if !accounts[1].IsOwnedBy(token.ProgramKey) {
			return token.ErrorInvalidMint
		}
		var mint token.Mint
		if !mint.Unmarshal(accounts[1].Data) {
			return token.ErrorInvalidMint
		}

		rent, err := system.RentFromAccount(accounts[3].Key, accounts[3].Data)
		if err != nil {
			return solana.InstructionErrorInvalidArgument
		}
		if account.Lamports < rent.MinimumBalance(uint64(len(account.Data))) {
			return token.ErrorNotRentExempt
		}

		initialized := token.Account{
			Mint:  copyKey(decompiled.Mint),
			Owner: copyKey(decompiled.Owner),
			State: token.AccountStateInitialized,
		}
		account.Data = initialized.Marshal()
		return nil

	case token.CommandTransfer:
		if len(accounts) < 3 {
			return solana.InstructionErrorNotEnoughAccountKeys
		}
		decompiled, err := token.DecompileTransfer(ix)
		if err != nil {
			return token.ErrorInvalidInstruction
		}

		sourceInfo, destInfo, authority := accounts[0], accounts[1], accounts[2]
		source, err := loadTokenAccount(sourceInfo)
		if err != nil {
			return err
		}
		dest, err := loadTokenAccount(destInfo)
		if err != nil {
			return err
		}

		if source.State == token.AccountStateFrozen || dest.State == token.AccountStateFrozen {
			return token.ErrorAccountFrozen
		}
		if !source.Mint.Equal(dest.Mint) {
			return token.ErrorMintMismatch
		}
		if !source.Owner.Equal(authority.Key) {
			return token.ErrorOwnerMismatch
		}
		if !authority.IsSigner {
			return solana.InstructionErrorMissingRequiredSignature
		}
		if source.Amount < decompiled.Amount {
			return token.ErrorInsufficientFunds
		}

		if sourceInfo.Key.Equal(destInfo.Key) {
			return nil
		}
		if dest.Amount+decompiled.Amount < dest.Amount {
			return token.ErrorOverflow
		}

		source.Amount -= decompiled.Amount
		dest.Amount += decompiled.Amount
		sourceInfo.Data = source.Marshal()
		destInfo.Data = dest.Marshal()
		return nil

	default:
		return token.ErrorInvalidInstruction
	}
}

func loadTokenAccount(info *runtime.AccountInfo) (*token.Account, error) {
	if !info.IsOwnedBy(token.ProgramKey) {
		return nil, solana.InstructionErrorIncorrectProgramID
	}
	if len(info.Data) != token.AccountSize {
		return nil, solana.InstructionErrorInvalidAccountData
	}

	var account token.Account
	if !account.Unmarshal(info.Data) {
		return nil, token.ErrorUninitializedState
	}
	return &account, nil
}

func processAssociatedTokenAccount(programID ed25519.PublicKey, accounts []*runtime.AccountInfo, data []byte, invoker runtime.Invoker) error {
	if len(accounts) < 7 {
		return solana.InstructionErrorNotEnoughAccountKeys
	}

	decompiled, err := token.DecompileCreateAssociatedAccount(toInstruction(programID, accounts, data))
	if err != nil {
		return solana.InstructionErrorInvalidInstructionData
	}

	expected, bump, err := solana.FindProgramAddressAndBump(
		programID,
		decompiled.Owner,
		token.ProgramKey,
		decompiled.Mint,
	)
	if err != nil || !expected.Equal(decompiled.Address) {
		return solana.InstructionErrorInvalidSeeds
	}

	rent, err := system.RentFromAccount(accounts[6].Key, accounts[6].Data)
	if err != nil {
		return solana.InstructionErrorInvalidArgument
	}

	err = invoker.Invoke(
		system.CreateAccount(
			decompiled.Subsidizer,
			decompiled.Address,
			token.ProgramKey,
			rent.MinimumBalance(token.AccountSize),
			token.AccountSize,
		),
		runtime.NewSignerSeeds(bump, decompiled.Owner, token.ProgramKey, decompiled.Mint),
	)
	if err != nil {
		return err
	}

	return invoker.Invoke(token.InitializeAccount(decompiled.Address, decompiled.Mint, decompiled.Owner))
}
