package fusion

import (
	"testing"

	"go.viam.com/test"
)

func TestDecayEnvelopeRecursion(t *testing.T) {
	test.That(t, decayEnvelope(0, 2.0, 0.9), test.ShouldAlmostEqual, 0.2, 1e-12)
	test.That(t, decayEnvelope(0.5, -1.0, 0.9), test.ShouldAlmostEqual, 0.55, 1e-12)
	// Magnitude only; sign of the residual never matters.
	test.That(t, decayEnvelope(0.5, 1.0, 0.9), test.ShouldAlmostEqual, decayEnvelope(0.5, -1.0, 0.9), 1e-15)
}

func TestDecayEnvelopeDecaysUnderZeroInput(t *testing.T) {
	s := 1.0
	prev := s
	for i := 0; i < 200; i++ {
		s = decayEnvelope(s, 0, 0.95)
		test.That(t, s, test.ShouldBeLessThan, prev)
		test.That(t, s, test.ShouldBeGreaterThanOrEqualTo, 0.0)
		prev = s
	}
	test.That(t, s, test.ShouldBeLessThan, 1e-4)
}
