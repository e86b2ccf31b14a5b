package solve

import (
	"github.com/bits-and-blooms/bitset"
	"github.com/rs/zerolog"

	"github.com/saddleopt/saddle/mp"
)

// resolveIntegrality applies the relaxation policy. A request with integer
// variables is rejected unless it asks for the continuous relaxation; when
// it does, integrality is dropped entirely (bounds stay exactly as declared)
// and the number of relaxed variables is returned for the solve log.
//
// Requests without integer variables behave identically whether or not they
// ask for relaxation.
func resolveIntegrality(req *mp.ModelRequest, log zerolog.Logger) (int, error) {
	integers := bitset.New(uint(len(req.Variables)))
	for j := range req.Variables {
		if req.Variables[j].Integer {
			integers.Set(uint(j))
		}
	}
	count := int(integers.Count())
	if count == 0 {
		return 0, nil
	}
	if !req.RelaxIntegerVariables {
		first, _ := integers.NextSet(0)
		return 0, newError(KindIntegralityNotSupported, "Policy",
			"%d integer variables (first at index %d); set RelaxIntegerVariables to solve the continuous relaxation",
			count, first)
	}
	log.Warn().Int("count", count).Msg("relaxing integer variables to continuous")
	return count, nil
}
