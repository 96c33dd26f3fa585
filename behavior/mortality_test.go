package behavior

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/larvadrift/ensemble"
)

type recordingDeactivator struct {
	inner   Deactivator
	reasons []string
}

func (d *recordingDeactivator) Deactivate(
	sel ensemble.Selection,
	predicate func(i int) bool,
	reason string,
) int {
	d.reasons = append(d.reasons, reason)
	return d.inner.Deactivate(sel, predicate, reason)
}

var _ = Describe("Mortality", func() {
	var (
		e *ensemble.Ensemble
		m *Mortality
	)

	BeforeEach(func() {
		e = ensemble.New()
		e.Seed(ensemble.Particle{}, ensemble.Particle{})
		m = NewMortality(1.0, 24)
	})

	It("should convert PLD to a step threshold", func() {
		Expect(m.Threshold()).To(Equal(24.0))

		m.CompletePLD = 2.5
		m.StepsPerDay = 48
		Expect(m.Threshold()).To(Equal(120.0))
	})

	It("should age every selected larva by exactly one", func() {
		_, err := m.Update(e, e.All(), clockAt(0))

		Expect(err).NotTo(HaveOccurred())
		Expect(e.NSteps).To(Equal([]float64{2, 2}))
	})

	It("should deactivate when the count goes from 24 to 25", func() {
		for step := 1; step <= 23; step++ {
			report, _ := m.Update(e, e.All(), clockAt(step))
			Expect(report.Deactivated).To(Equal(0))
		}

		Expect(e.NSteps[0]).To(Equal(24.0))
		Expect(e.Active[0]).To(BeTrue())

		report, _ := m.Update(e, e.All(), clockAt(24))

		Expect(e.NSteps[0]).To(Equal(25.0))
		Expect(e.Active).To(Equal([]bool{false, false}))
		Expect(e.Reason(0)).To(Equal(ReasonDead))
		Expect(report.Deactivated).To(Equal(2))
	})

	It("should keep ageing deactivated larvae by default", func() {
		Expect(m.Scope()).To(Equal(ScopeAll))

		for step := 0; step < 30; step++ {
			before := append([]float64(nil), e.NSteps...)
			_, _ = m.Update(e, e.All(), clockAt(step))

			for i := range before {
				Expect(e.NSteps[i]).To(Equal(before[i] + 1))
			}
		}

		Expect(e.NSteps[0]).To(Equal(31.0))
		Expect(e.Active).To(Equal([]bool{false, false}))
	})

	It("should never reactivate a larva", func() {
		for step := 0; step < 40; step++ {
			_, _ = m.Update(e, e.All(), clockAt(step))
			if step >= 23 {
				Expect(e.Active).To(Equal([]bool{false, false}))
			}
		}
	})

	It("should only select active larvae when inactive ones do not age", func() {
		m.AgeInactive = false

		Expect(m.Scope()).To(Equal(ScopeActive))
	})

	It("should report each larva as deactivated only once", func() {
		total := 0
		for step := 0; step < 30; step++ {
			report, _ := m.Update(e, e.All(), clockAt(step))
			total += report.Deactivated
		}

		Expect(total).To(Equal(2))
	})

	It("should deactivate through the injected deactivator", func() {
		d := &recordingDeactivator{inner: e}
		m.Deactivator = d

		_, _ = m.Update(e, e.All(), clockAt(0))

		Expect(d.reasons).To(Equal([]string{ReasonDead}))
	})
})
