package codes

import (
	"github.com/yola1107/kratos/v2/errors"
)

var (
	ErrGameNotFound         = errors.New(100, "GAME_NOT_FOUND", "game not found")
	ErrGameNotPlaying       = errors.New(101, "GAME_NOT_PLAYING", "game is not in playing state")
	ErrGameFinished         = errors.New(102, "GAME_FINISHED", "game already finished")
	ErrTableFull            = errors.New(103, "TABLE_FULL", "table is full")
	ErrGameStarted          = errors.New(104, "GAME_STARTED", "game already started")
	ErrNotEnoughPlayers     = errors.New(105, "NOT_ENOUGH_PLAYERS", "not enough players to start")
	ErrPlayerNotFound       = errors.New(110, "PLAYER_NOT_FOUND", "player not found")
	ErrNotYourTurn          = errors.New(111, "NOT_YOUR_TURN", "not your turn")
	ErrInvalidPlay          = errors.New(112, "INVALID_PLAY", "card does not match top of discard")
	ErrCardsNotInHand       = errors.New(113, "CARDS_NOT_IN_HAND", "cards not in hand")
	ErrInvalidStack         = errors.New(114, "INVALID_STACK", "stacked cards must share one rank")
	ErrInvalidCounter       = errors.New(115, "INVALID_COUNTER", "card cannot answer the pending attack or skip")
	ErrDuplicateCardsInPlay = errors.New(116, "DUPLICATE_CARDS_IN_PLAY", "same card instance used twice")
	ErrTokenExpired         = errors.New(120, "TOKEN_EXPIRED", "session token expired")
	ErrTokenNotFound        = errors.New(121, "TOKEN_NOT_FOUND", "session token not found")
)
