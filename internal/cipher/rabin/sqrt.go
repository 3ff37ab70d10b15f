package rabin

import "math/big"

var (
	one   = big.NewInt(1)
	two   = big.NewInt(2)
	three = big.NewInt(3)
	four  = big.NewInt(4)
)

// SqrtModPrime returns r with r*r ≡ a (mod p), or false when a is not a
// quadratic residue modulo p. p must be prime. p = 2 always yields 0.
func SqrtModPrime(a, p *big.Int) (*big.Int, bool) {
	a = new(big.Int).Mod(a, p)
	if a.Sign() == 0 {
		return big.NewInt(0), true
	}
	if p.Cmp(two) == 0 {
		return big.NewInt(0), true
	}
	if !isQuadraticResidue(a, p) {
		return nil, false
	}

	if new(big.Int).Mod(p, four).Cmp(three) == 0 {
		exp := new(big.Int).Add(p, one)
		exp.Rsh(exp, 2)
		return new(big.Int).Exp(a, exp, p), true
	}

	return tonelliShanks(a, p)
}

// isQuadraticResidue applies Euler's criterion: a^((p-1)/2) ≡ 1 (mod p).
func isQuadraticResidue(a, p *big.Int) bool {
	exp := new(big.Int).Sub(p, one)
	exp.Rsh(exp, 1)
	return new(big.Int).Exp(a, exp, p).Cmp(one) == 0
}

// tonelliShanks covers primes p ≡ 1 (mod 4).
func tonelliShanks(a, p *big.Int) (*big.Int, bool) {
	pMinusOne := new(big.Int).Sub(p, one)

	// p - 1 = q * 2^s with q odd.
	q := new(big.Int).Set(pMinusOne)
	s := 0
	for q.Bit(0) == 0 {
		q.Rsh(q, 1)
		s++
	}

	// Any non-residue works; the smallest one is found quickly.
	z := big.NewInt(2)
	halfOrder := new(big.Int).Rsh(pMinusOne, 1)
	for new(big.Int).Exp(z, halfOrder, p).Cmp(pMinusOne) != 0 {
		z.Add(z, one)
	}

	m := s
	c := new(big.Int).Exp(z, q, p)
	t := new(big.Int).Exp(a, q, p)
	rExp := new(big.Int).Add(q, one)
	rExp.Rsh(rExp, 1)
	r := new(big.Int).Exp(a, rExp, p)

	for t.Cmp(one) != 0 {
		// Least i with t^(2^i) == 1.
		i := 0
		tmp := new(big.Int).Set(t)
		for tmp.Cmp(one) != 0 {
			tmp.Mul(tmp, tmp).Mod(tmp, p)
			i++
			if i == m {
				return nil, false
			}
		}

		b := new(big.Int).Set(c)
		for j := 0; j < m-i-1; j++ {
			b.Mul(b, b).Mod(b, p)
		}

		m = i
		c.Mul(b, b).Mod(c, p)
		t.Mul(t, c).Mod(t, p)
		r.Mul(r, b).Mod(r, p)
	}

	return r, true
}

// CombineCRT lifts the roots mp (mod p) and mq (mod q) to the four square
// roots modulo n = p*q. p and q must be coprime.
func CombineCRT(mp, mq, p, q *big.Int) [4]*big.Int {
	n := new(big.Int).Mul(p, q)

	// yp*p + yq*q = 1
	yp, yq := new(big.Int), new(big.Int)
	new(big.Int).GCD(yp, yq, p, q)

	ypp := new(big.Int).Mul(yp, p)
	yqq := new(big.Int).Mul(yq, q)
	qPart := new(big.Int).Mul(yqq, mp)

	r1 := new(big.Int).Mul(ypp, mq)
	r1.Add(r1, qPart).Mod(r1, n)
	r2 := new(big.Int).Sub(n, r1)

	r3 := new(big.Int).Mul(ypp, new(big.Int).Neg(mq))
	r3.Add(r3, qPart).Mod(r3, n)
	r4 := new(big.Int).Sub(n, r3)

	return [4]*big.Int{r1, r2, r3, r4}
}
