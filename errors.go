package ledger

import "fmt"

// ErrorCode enumerates every condition that can block a rebuild pass. The
// code is the control-flow identity of the failure; the message text below is
// presentation only and safe to localize.
type ErrorCode int

const (
	// Resolution errors.
	ErrAccountNotFound ErrorCode = iota + 1
	ErrAssetNotFound
	ErrAmbiguousAsset
	ErrQuoteMissing
	ErrRateMissing

	// Policy violations.
	ErrUnsupportedTransfer
	ErrUnsupportedAction
	ErrDividendTypeNA
	ErrUnsupportedDividend
	ErrStockDividendShort
	ErrPartialCoverage
	ErrNoBrokerForTrade
	ErrNoBrokerForDividend
	ErrOverClose
	ErrUnmatchedTransferAccount
	ErrCategoryUnknown

	// Numeric errors.
	ErrZeroRate
	ErrRoundingDrift
)

func (c ErrorCode) String() string {
	switch c {
	case ErrAccountNotFound:
		return "account not found"
	case ErrAssetNotFound:
		return "asset not found"
	case ErrAmbiguousAsset:
		return "multiple match for asset"
	case ErrQuoteMissing:
		return "no quote for asset"
	case ErrRateMissing:
		return "no exchange rate"
	case ErrUnsupportedTransfer:
		return "unsupported transfer type"
	case ErrUnsupportedAction:
		return "unsupported corporate action type"
	case ErrDividendTypeNA:
		return "can't process dividend with N/A type"
	case ErrUnsupportedDividend:
		return "unsupported dividend type"
	case ErrStockDividendShort:
		return "not supported action: stock dividend closes short trade"
	case ErrPartialCoverage:
		return "unhandled case: corporate action covers not full open position"
	case ErrNoBrokerForTrade:
		return "no broker set on investment account"
	case ErrNoBrokerForDividend:
		return "no paying bank set on dividend account"
	case ErrOverClose:
		return "closing more than the open position"
	case ErrUnmatchedTransferAccount:
		return "unmatched account for transfer"
	case ErrCategoryUnknown:
		return "can't match category"
	case ErrZeroRate:
		return "error. Zero rate"
	case ErrRoundingDrift:
		return "rounding drift beyond tolerance"
	default:
		return "unknown error"
	}
}

// ReplayError is the blocking failure of a rebuild pass. It pins the exact
// record that could not be applied; everything applied before it stays valid.
type ReplayError struct {
	Code    ErrorCode
	Op      Key    // order key of the failing record
	Account string // account involved, when known
	Asset   string // asset involved, when known
	Detail  string // free-form context, presentation only
}

func (e *ReplayError) Error() string {
	msg := e.Code.String()
	if e.Account != "" {
		msg += fmt.Sprintf(" (account %s)", e.Account)
	}
	if e.Asset != "" {
		msg += fmt.Sprintf(" (asset %s)", e.Asset)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return fmt.Sprintf("%s at %s", msg, e.Op)
}

// Is makes errors.Is match two replay errors by code.
func (e *ReplayError) Is(target error) bool {
	t, ok := target.(*ReplayError)
	return ok && t.Code == e.Code
}

// Severity ranks pass log entries.
type Severity int

const (
	Info Severity = iota
	Warning
	Blocking
)

func (s Severity) String() string {
	switch s {
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Blocking:
		return "blocking"
	default:
		return "unknown"
	}
}

// Entry is one line of the pass log. Info and Warning entries accumulate for
// audit and never halt the pass; exactly one Blocking entry is emitted for a
// failed pass.
type Entry struct {
	Severity Severity
	Message  string
	Op       Key // order key of the record the entry is about, zero when global
}

func (e Entry) String() string {
	if e.Op.IsZero() {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] %s (%s)", e.Severity, e.Message, e.Op)
}
