package behavior

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/larvadrift/ensemble"
	"github.com/sarchlab/larvadrift/sim/timing"
)

func clockAt(hour int) timing.Clock {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	return timing.Clock{
		Start: start,
		Now:   start.Add(time.Duration(hour) * time.Hour),
		Step:  time.Hour,
	}
}

var _ = Describe("DielVerticalMigration", func() {
	var (
		e   *ensemble.Ensemble
		dvm *DielVerticalMigration
	)

	BeforeEach(func() {
		e = ensemble.New()
		dvm = NewDielVerticalMigration(time.UTC)
	})

	It("should convert length to swim speed", func() {
		Expect(dvm.SwimSpeed(0.5)).To(BeNumerically("~", 9.20925e-4, 1e-9))
	})

	It("should descend before noon", func() {
		for hour := 0; hour < 12; hour++ {
			Expect(Direction(hour)).To(Equal(-1.0))
		}
	})

	It("should ascend from noon on", func() {
		for hour := 12; hour < 24; hour++ {
			Expect(Direction(hour)).To(Equal(1.0))
		}
	})

	It("should sink a surface larva at hour 6", func() {
		e.Seed(ensemble.Particle{Z: 0, Length: 0.5})

		report, err := dvm.Update(e, e.All(), clockAt(6))

		Expect(err).NotTo(HaveOccurred())
		Expect(report.Selected).To(Equal(1))
		Expect(e.Z[0]).To(BeNumerically("~", -3.31533, 1e-4))
	})

	It("should raise a larva at hour 18", func() {
		e.Seed(ensemble.Particle{Z: -10, Length: 0.5})

		_, err := dvm.Update(e, e.All(), clockAt(18))

		Expect(err).NotTo(HaveOccurred())
		Expect(e.Z[0]).To(BeNumerically("~", -6.68467, 1e-4))
	})

	It("should never move a larva above the surface", func() {
		e.Seed(ensemble.Particle{Z: -1, Length: 0.5})

		_, _ = dvm.Update(e, e.All(), clockAt(13))

		Expect(e.Z[0]).To(Equal(0.0))
	})

	It("should not bound the descent", func() {
		e.Seed(ensemble.Particle{Z: -1000, Length: 0.5})

		_, _ = dvm.Update(e, e.All(), clockAt(1))

		Expect(e.Z[0]).To(BeNumerically("<", -1000))
	})

	It("should scale displacement with each larva's length", func() {
		e.Seed(
			ensemble.Particle{Z: -50, Length: 0.5},
			ensemble.Particle{Z: -50, Length: 1.0},
		)

		_, _ = dvm.Update(e, e.All(), clockAt(3))

		Expect(e.Z[1] + 50).To(BeNumerically("~", 2*(e.Z[0]+50), 1e-9))
	})

	It("should scale displacement with step duration", func() {
		e.Seed(ensemble.Particle{Z: -50, Length: 0.5})
		clk := clockAt(3)
		clk.Step = 30 * time.Minute

		_, _ = dvm.Update(e, e.All(), clk)

		Expect(e.Z[0]).To(BeNumerically("~", -50-3.31533/2, 1e-4))
	})

	It("should only touch selected larvae", func() {
		e.Seed(ensemble.Particle{Z: -5}, ensemble.Particle{Z: -5})

		_, _ = dvm.Update(e, ensemble.Selection{1}, clockAt(3))

		Expect(e.Z[0]).To(Equal(-5.0))
		Expect(e.Z[1]).To(BeNumerically("<", -5))
	})

	It("should take the hour in the configured location", func() {
		dvm.Location = time.FixedZone("UTC-3", -3*3600)
		e.Seed(ensemble.Particle{Z: -10})

		// 14:00 UTC is 11:00 local, still morning.
		_, _ = dvm.Update(e, e.All(), clockAt(14))

		Expect(e.Z[0]).To(BeNumerically("<", -10))
	})

	It("should not change length or age", func() {
		e.Seed(ensemble.Particle{Z: -5})

		_, _ = dvm.Update(e, e.All(), clockAt(3))

		Expect(e.Length[0]).To(Equal(ensemble.DefaultLength))
		Expect(e.NSteps[0]).To(Equal(ensemble.DefaultNSteps))
	})
})
