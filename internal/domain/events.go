package domain

// Event is a domain event emitted after a state transition has settled.
// Amounts are decimal strings so sinks can serialize without knowing the
// engine's numeric representation.
type Event interface {
	Name() string
}

type PoolCreated struct {
	Token0 string `json:"token0"`
	Token1 string `json:"token1"`
	Key    string `json:"poolKey"`
}

func (PoolCreated) Name() string { return "PoolCreated" }

type LiquidityAdded struct {
	Provider     string `json:"provider"`
	Key          string `json:"poolKey"`
	Amount0      string `json:"amount0"`
	Amount1      string `json:"amount1"`
	SharesMinted string `json:"sharesMinted"`
}

func (LiquidityAdded) Name() string { return "LiquidityAdded" }

type LiquidityRemoved struct {
	Provider     string `json:"provider"`
	Key          string `json:"poolKey"`
	Amount0      string `json:"amount0"`
	Amount1      string `json:"amount1"`
	SharesBurned string `json:"sharesBurned"`
}

func (LiquidityRemoved) Name() string { return "LiquidityRemoved" }

type Swapped struct {
	Caller    string `json:"caller"`
	Key       string `json:"poolKey"`
	TokenIn   string `json:"tokenIn"`
	AmountIn  string `json:"amountIn"`
	AmountOut string `json:"amountOut"`
}

func (Swapped) Name() string { return "Swapped" }

// EventSink consumes engine events. Publish is called synchronously after the
// emitting operation has committed; implementations must not call back into
// the engine.
type EventSink interface {
	Publish(ev Event)
}
