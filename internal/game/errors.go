package game

import "errors"

// Simulation errors
var (
	ErrUnknownTerritory       = errors.New("unknown territory")
	ErrDuplicateTerritory     = errors.New("territory already exists")
	ErrInvalidTerritory       = errors.New("invalid territory")
	ErrInvalidConfig          = errors.New("invalid territory config")
	ErrUnknownGenerator       = errors.New("unknown resource generator")
	ErrUnknownCollectionPoint = errors.New("unknown collection point")
	ErrInvalidResource        = errors.New("invalid resource type")
)
