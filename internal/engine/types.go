package engine

// Outcome is the closed result variant every fallible game command
// returns. There is no error-based control flow: a command either
// applies fully, asks the caller for a follow-up (promotion choice or
// castling confirmation), or rejects with all state untouched.
type Outcome string

const (
	OutcomeMoved                Outcome = "moved"
	OutcomeInvalid              Outcome = "invalid"
	OutcomePromotionRequired    Outcome = "promotion_required"
	OutcomeCastlingConfirmation Outcome = "castling_confirmation_required"
)

// MoveResult reports what a command did. Move is set only for
// OutcomeMoved; Kingside is meaningful only for
// OutcomeCastlingConfirmation.
type MoveResult struct {
	Outcome  Outcome `json:"outcome"`
	Move     *Move   `json:"move,omitempty"`
	From     Square  `json:"from"`
	To       Square  `json:"to"`
	Piece    Piece   `json:"piece"`
	Kingside bool    `json:"kingside,omitempty"`
}

func invalid(from, to Square) MoveResult {
	return MoveResult{Outcome: OutcomeInvalid, From: from, To: to}
}
