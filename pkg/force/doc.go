// Package force evaluates the attractive and repulsive force magnitudes of a
// spring-embedder layout.
//
// A force is a [Func] of the distance d between two vertices and the
// layout's characteristic distance k. The built-in pair is the classic
// Fruchterman-Reingold one:
//
//	attractive(d, k) = d² / k
//	repulsive(d, k)  = k² / d
//
// Forces can also be supplied as text. [Compile] turns an arithmetic
// expression over d and k into a Func once, so it can be evaluated many
// times per simulation step:
//
//	f, err := force.Compile("(d * d) / k")
//	if err != nil {
//	    // INVALID_EXPRESSION, reported before any simulation runs
//	}
//	f(10, 5) // 20
//
// Supported syntax: numeric literals, the variables d and k, the operators
// + - * / and ^ (or **) for exponentiation, parentheses, unary minus, and
// the functions log (natural), ln, log10, sqrt, exp and abs.
package force
