package solana

import (
	"encoding/json"

	"solana-wallet-profiler/internal/domain"
)

// getTransactionResult is the raw RPC response for getTransaction.
type getTransactionResult struct {
	Slot        int64               `json:"slot"`
	BlockTime   *int64              `json:"blockTime"`
	Meta        *getTransactionMeta `json:"meta"`
	Transaction *getTransactionTx   `json:"transaction"`
}

type getTransactionMeta struct {
	Err               interface{}       `json:"err"`
	Fee               uint64            `json:"fee"`
	LogMessages       []string          `json:"logMessages"`
	PreTokenBalances  []rawTokenBalance `json:"preTokenBalances"`
	PostTokenBalances []rawTokenBalance `json:"postTokenBalances"`
}

type getTransactionTx struct {
	Signatures []string               `json:"signatures"`
	Message    *getTransactionMessage `json:"message"`
}

type getTransactionMessage struct {
	AccountKeys  []accountKey     `json:"accountKeys"`
	Instructions []rawInstruction `json:"instructions"`
}

type rawInstruction struct {
	ProgramID string `json:"programId"`
}

// rawTokenBalance is one preTokenBalances/postTokenBalances entry.
type rawTokenBalance struct {
	Mint          string `json:"mint"`
	UITokenAmount struct {
		UIAmount *float64 `json:"uiAmount"`
		Symbol   string   `json:"symbol"`
	} `json:"uiTokenAmount"`
}

// accountKey accepts both the string form ("json" encoding) and the
// object form with a pubkey field ("jsonParsed" encoding).
type accountKey struct {
	Pubkey string
}

func (a *accountKey) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		a.Pubkey = s
		return nil
	}
	var obj struct {
		Pubkey string `json:"pubkey"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	a.Pubkey = obj.Pubkey
	return nil
}

// toDomain maps the wire transaction onto the domain record. Absent optional
// sections map to empty slices rather than nils with meaning.
func (r *getTransactionResult) toDomain(signature string) *domain.RawTransaction {
	tx := &domain.RawTransaction{
		Signature: signature,
		Slot:      r.Slot,
	}
	if r.BlockTime != nil {
		tx.BlockTime = *r.BlockTime
	}

	if r.Meta != nil {
		tx.Fee = r.Meta.Fee
		tx.LogMessages = r.Meta.LogMessages
		tx.PreBalances = toDomainBalances(r.Meta.PreTokenBalances)
		tx.PostBalances = toDomainBalances(r.Meta.PostTokenBalances)
	}

	if r.Transaction != nil {
		tx.Signatures = r.Transaction.Signatures
		if len(tx.Signatures) > 0 {
			tx.Signature = tx.Signatures[0]
		}
		if r.Transaction.Message != nil {
			for _, k := range r.Transaction.Message.AccountKeys {
				tx.AccountKeys = append(tx.AccountKeys, k.Pubkey)
			}
			for _, ins := range r.Transaction.Message.Instructions {
				tx.Instructions = append(tx.Instructions, domain.Instruction{ProgramID: ins.ProgramID})
			}
		}
	}

	return tx
}

func toDomainBalances(raw []rawTokenBalance) []domain.TokenBalance {
	balances := make([]domain.TokenBalance, 0, len(raw))
	for _, b := range raw {
		if b.Mint == "" {
			continue
		}
		var amount float64
		if b.UITokenAmount.UIAmount != nil {
			amount = *b.UITokenAmount.UIAmount
		}
		balances = append(balances, domain.TokenBalance{
			Mint:   b.Mint,
			Amount: amount,
			Symbol: b.UITokenAmount.Symbol,
		})
	}
	return balances
}
