package tx

import "fmt"

// Result represents a transaction result code
type Result int

// Transaction result codes, organized by category: tes, tec, tef, tem
const (
	// tesSUCCESS
	TesSUCCESS Result = 0

	// tec codes (100-199): the transaction was well formed but the escrow
	// state does not permit it. Nothing is changed.
	TecINSUFFICIENT_FUNDS  Result = 101
	TecUNAUTHORIZED        Result = 102
	TecRECIPIENT_NOT_FOUND Result = 103
	TecINVALID_STATUS      Result = 104
	TecALREADY_CONFIRMED   Result = 105
	TecALREADY_CLAIMED     Result = 106
	TecALREADY_EXISTS      Result = 107
	TecINVALID_TIMELOCK    Result = 108
	TecTIMELOCK_ACTIVE     Result = 109
	TecALREADY_FINALIZED   Result = 110
	TecINVALID_MINT        Result = 111
	TecINVALID_SPLITS      Result = 112
	TecNO_ENTRY            Result = 113
	TecOVERFLOW            Result = 114

	// tef codes (-199 to -100): failure before application
	TefFAILURE  Result = -199
	TefALREADY  Result = -198
	TefINTERNAL Result = -197

	// tem codes (-299 to -200): malformed transaction
	TemMALFORMED               Result = -299
	TemBAD_SIGNATURE           Result = -298
	TemBAD_SRC_ACCOUNT         Result = -297
	TemINVALID                 Result = -296
	TemUNKNOWN                 Result = -295
	TemINVALID_AMOUNT          Result = -294
	TemINVALID_RECIPIENT_COUNT Result = -293
	TemDUPLICATE_RECIPIENT     Result = -292
	TemZERO_SPLIT              Result = -291
	TemINVALID_SPLITS          Result = -290
	TemINVALID_ARBITER         Result = -289
)

type resultInfo struct {
	token   string
	message string
}

var resultInfos = map[Result]resultInfo{
	TesSUCCESS: {"tesSUCCESS", "The transaction was applied."},

	TecINSUFFICIENT_FUNDS:  {"tecINSUFFICIENT_FUNDS", "Insufficient funds in escrow."},
	TecUNAUTHORIZED:        {"tecUNAUTHORIZED", "Unauthorized."},
	TecRECIPIENT_NOT_FOUND: {"tecRECIPIENT_NOT_FOUND", "Recipient not found in escrow."},
	TecINVALID_STATUS:      {"tecINVALID_STATUS", "Invalid status for this action."},
	TecALREADY_CONFIRMED:   {"tecALREADY_CONFIRMED", "Recipient already confirmed."},
	TecALREADY_CLAIMED:     {"tecALREADY_CLAIMED", "Already claimed."},
	TecALREADY_EXISTS:      {"tecALREADY_EXISTS", "An escrow already exists for this requester and bounty."},
	TecINVALID_TIMELOCK:    {"tecINVALID_TIMELOCK", "Invalid timelock."},
	TecTIMELOCK_ACTIVE:     {"tecTIMELOCK_ACTIVE", "Timelock not expired."},
	TecALREADY_FINALIZED:   {"tecALREADY_FINALIZED", "Already released or refunded."},
	TecINVALID_MINT:        {"tecINVALID_MINT", "Invalid token mint for this operation."},
	TecINVALID_SPLITS:      {"tecINVALID_SPLITS", "Share rounds down to zero."},
	TecNO_ENTRY:            {"tecNO_ENTRY", "No escrow exists at this reference."},
	TecOVERFLOW:            {"tecOVERFLOW", "Arithmetic overflow."},

	TefFAILURE:  {"tefFAILURE", "Failed to apply."},
	TefALREADY:  {"tefALREADY", "The exact transaction was already applied."},
	TefINTERNAL: {"tefINTERNAL", "Internal error."},

	TemMALFORMED:               {"temMALFORMED", "Malformed transaction."},
	TemBAD_SIGNATURE:           {"temBAD_SIGNATURE", "The transaction signature is invalid."},
	TemBAD_SRC_ACCOUNT:         {"temBAD_SRC_ACCOUNT", "The source account is malformed."},
	TemINVALID:                 {"temINVALID", "The transaction is ill-formed."},
	TemUNKNOWN:                 {"temUNKNOWN", "Unknown transaction type."},
	TemINVALID_AMOUNT:          {"temINVALID_AMOUNT", "Invalid transfer amount."},
	TemINVALID_RECIPIENT_COUNT: {"temINVALID_RECIPIENT_COUNT", "Invalid recipient count."},
	TemDUPLICATE_RECIPIENT:     {"temDUPLICATE_RECIPIENT", "Duplicate recipient."},
	TemZERO_SPLIT:              {"temZERO_SPLIT", "Split cannot be zero."},
	TemINVALID_SPLITS:          {"temINVALID_SPLITS", "Invalid splits, must sum to 10000 basis points."},
	TemINVALID_ARBITER:         {"temINVALID_ARBITER", "Invalid arbiter."},
}

var resultsByToken = func() map[string]Result {
	m := make(map[string]Result, len(resultInfos))
	for r, info := range resultInfos {
		m[info.token] = r
	}
	return m
}()

// String returns the string representation of the result code
func (r Result) String() string {
	if info, ok := resultInfos[r]; ok {
		return info.token
	}
	return fmt.Sprintf("Unknown(%d)", int(r))
}

// Message returns a human-readable message for the result
func (r Result) Message() string {
	if info, ok := resultInfos[r]; ok {
		return info.message
	}
	return r.String()
}

// ResultFromString returns the code for a token such as "tecUNAUTHORIZED".
func ResultFromString(token string) (Result, bool) {
	r, ok := resultsByToken[token]
	return r, ok
}

// IsSuccess returns true if the result indicates success
func (r Result) IsSuccess() bool {
	return r == TesSUCCESS
}

// IsTec returns true if this is a tec code
func (r Result) IsTec() bool {
	return r >= 100 && r < 200
}

// IsTef returns true if this is a tef (failure) code
func (r Result) IsTef() bool {
	return r >= -199 && r <= -100
}

// IsTem returns true if this is a tem (malformed) code
func (r Result) IsTem() bool {
	return r >= -299 && r <= -200
}

// IsApplied returns true if the transaction changed ledger state
func (r Result) IsApplied() bool {
	return r.IsSuccess()
}

// MarshalText lets results appear as tokens in JSON.
func (r Result) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *Result) UnmarshalText(text []byte) error {
	parsed, ok := ResultFromString(string(text))
	if !ok {
		return fmt.Errorf("unknown result %q", string(text))
	}
	*r = parsed
	return nil
}
