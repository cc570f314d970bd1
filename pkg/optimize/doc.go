// Package optimize searches for the cooling rate that reaches equilibrium
// in the fewest iterations.
//
// [Sweep] walks a range of cooling rates in ascending order. For every rate
// it runs SampleSize independent simulations concurrently, each on a fresh
// graph from a [GraphFactory], waits for all of them, and records the mean
// number of iterations. The rate with the lowest mean wins; ties go to the
// lowest rate.
//
//	res, err := optimize.Sweep(ctx, topology.Factory("ring", 6), params,
//	    optimize.Range{From: 0.01, To: 0.05, Step: 0.01, SampleSize: 10},
//	    optimize.Options{Seed: 42})
//	fmt.Println(res.Best.Rate)
package optimize
