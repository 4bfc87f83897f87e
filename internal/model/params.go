package model

// Params holds the structural parameters for one simulation run.
// Cap0 is the resolved initial capital stock: either the configured
// default or, for rolling runs, the value inherited from the baseline.
type Params struct {
	R     float64 // real interest rate
	Delta float64 // capital depreciation rate
	W     float64 // convex adjustment-cost coefficient
	Pk    float64 // capital purchase price
	Elast float64 // demand elasticity
	Scale float64 // demand scale
	Cap0  float64 // initial capital stock
}
