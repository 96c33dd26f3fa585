package model

import (
	"errors"
	"time"
	_ "time/tzdata"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/larvadrift/behavior"
	"github.com/sarchlab/larvadrift/config"
	"github.com/sarchlab/larvadrift/ensemble"
	"github.com/sarchlab/larvadrift/sim/hooking"
	"github.com/sarchlab/larvadrift/sim/timing"
)

var start = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

func hourly(index uint64) timing.Clock {
	return timing.Clock{
		Start: start,
		Now:   start.Add(time.Duration(index) * time.Hour),
		Step:  time.Hour,
		Index: index,
	}
}

func stageNames(m *Model) []string {
	names := []string{}
	for _, s := range m.Stages() {
		names = append(names, s.Name())
	}

	return names
}

var _ = Describe("Builder", func() {
	var (
		mockCtrl *gomock.Controller
		host     *MockTransport
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		host = NewMockTransport(mockCtrl)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should build the full pipeline by default", func() {
		m, err := MakeBuilder().WithTransport(host).Build()

		Expect(err).NotTo(HaveOccurred())
		Expect(stageNames(m)).To(Equal([]string{
			behavior.StageMigration,
			behavior.StageMortality,
			StageAdvection,
			StageMixing,
		}))
		Expect(m.Stage(behavior.StageMigration)).NotTo(BeNil())
	})

	It("should leave migration out of the reduced pipeline", func() {
		cfg := config.Default()
		cfg.IBM.Migration = false

		m, err := MakeBuilder().WithConfig(cfg).WithTransport(host).Build()

		Expect(err).NotTo(HaveOccurred())
		Expect(stageNames(m)).To(Equal([]string{
			behavior.StageMortality,
			StageAdvection,
			StageMixing,
		}))
		Expect(m.Stage(behavior.StageMigration)).To(BeNil())
	})

	It("should reject an out-of-bounds PLD before any step", func() {
		cfg := config.Default()
		cfg.IBM.CompletePLD = 91

		m, err := MakeBuilder().WithConfig(cfg).WithTransport(host).Build()

		Expect(m).To(BeNil())
		Expect(errors.Is(err, config.ErrOutOfBounds)).To(BeTrue())
	})

	It("should require a transport", func() {
		_, err := MakeBuilder().Build()

		Expect(err).To(MatchError(ErrNoTransport))
	})

	It("should pass configuration to the mortality stage", func() {
		cfg := config.Default()
		cfg.IBM.CompletePLD = 3
		cfg.IBM.StepsPerDay = 48
		cfg.IBM.AgeInactive = false

		m, err := MakeBuilder().WithConfig(cfg).WithTransport(host).Build()
		Expect(err).NotTo(HaveOccurred())

		mortality := m.Stage(behavior.StageMortality).(*behavior.Mortality)
		Expect(mortality.Threshold()).To(Equal(144.0))
		Expect(mortality.Scope()).To(Equal(behavior.ScopeActive))
	})

	It("should give the migration stage the configured time zone", func() {
		cfg := config.Default()
		cfg.IBM.Timezone = "Europe/Oslo"

		m, err := MakeBuilder().WithConfig(cfg).WithTransport(host).Build()
		Expect(err).NotTo(HaveOccurred())

		migration := m.Stage(behavior.StageMigration).(*behavior.DielVerticalMigration)
		Expect(migration.Location.String()).To(Equal("Europe/Oslo"))
	})

	It("should reject an unknown time zone", func() {
		cfg := config.Default()
		cfg.IBM.Timezone = "Nowhere/Atlantis"

		m, err := MakeBuilder().WithConfig(cfg).WithTransport(host).Build()

		Expect(m).To(BeNil())
		Expect(err).To(HaveOccurred())
	})

	It("should not share hooks between derived builders", func() {
		base := MakeBuilder().WithTransport(host)
		a := base.WithHook(hooking.HookFunc(func(hooking.HookCtx) {}))
		b := base.WithHook(hooking.HookFunc(func(hooking.HookCtx) {}))

		ma, _ := a.Build()
		mb, _ := b.Build()

		Expect(ma.NumHooks()).To(Equal(1))
		Expect(mb.NumHooks()).To(Equal(1))
	})
})

var _ = Describe("Model", func() {
	var (
		mockCtrl *gomock.Controller
		host     *MockTransport
		e        *ensemble.Ensemble
		m        *Model
	)

	build := func(cfg config.Config) {
		var err error
		m, err = MakeBuilder().
			WithConfig(cfg).
			WithTransport(host).
			WithEnsemble(e).
			Build()
		Expect(err).NotTo(HaveOccurred())
	}

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		host = NewMockTransport(mockCtrl)
		e = ensemble.New()
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should migrate and age before handing larvae to the host", func() {
		e.Seed(ensemble.Particle{Z: 0, Length: 0.5})
		build(config.Default())

		advect := host.EXPECT().
			Advect(e, ensemble.Selection{0}, hourly(6)).
			DoAndReturn(func(
				e *ensemble.Ensemble, _ ensemble.Selection, _ timing.Clock,
			) error {
				Expect(e.Z[0]).To(BeNumerically("~", -3.31533, 1e-4))
				Expect(e.NSteps[0]).To(Equal(2.0))
				return nil
			})
		host.EXPECT().
			MixVertically(e, ensemble.Selection{0}, hourly(6)).
			Return(nil).
			After(advect)

		report, err := m.Step(hourly(6))

		Expect(err).NotTo(HaveOccurred())
		Expect(report.Step).To(Equal(uint64(6)))
		Expect(report.Stages).To(HaveLen(4))
		Expect(report.Stages[0].Stage).To(Equal(behavior.StageMigration))
		Expect(report.Stages[3].Stage).To(Equal(StageMixing))
	})

	It("should keep depth untouched in the reduced variant", func() {
		cfg := config.Default()
		cfg.IBM.Migration = false
		e.Seed(ensemble.Particle{Z: -7})
		build(cfg)

		host.EXPECT().Advect(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil).AnyTimes()
		host.EXPECT().MixVertically(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil).AnyTimes()

		for i := uint64(0); i < 10; i++ {
			_, err := m.Step(hourly(i))
			Expect(err).NotTo(HaveOccurred())
		}

		Expect(e.Z[0]).To(Equal(-7.0))
		Expect(e.NSteps[0]).To(Equal(11.0))
	})

	It("should not transport larvae deactivated in the same step", func() {
		e.Seed(ensemble.Particle{Z: -20})
		build(config.Default())

		for i := uint64(0); i < 23; i++ {
			host.EXPECT().Advect(e, ensemble.Selection{0}, hourly(i)).Return(nil)
			host.EXPECT().MixVertically(e, ensemble.Selection{0}, hourly(i)).Return(nil)
		}

		host.EXPECT().Advect(e, ensemble.Selection{}, hourly(23)).Return(nil)
		host.EXPECT().MixVertically(e, ensemble.Selection{}, hourly(23)).Return(nil)

		for i := uint64(0); i < 24; i++ {
			report, err := m.Step(hourly(i))
			Expect(err).NotTo(HaveOccurred())

			if i == 23 {
				Expect(report.Deactivated).To(Equal(1))
				Expect(report.Ensemble.Active).To(Equal(0))
			}
		}

		Expect(e.NSteps[0]).To(Equal(25.0))
		Expect(e.Reason(0)).To(Equal(behavior.ReasonDead))
	})

	It("should keep larvae below the surface and count every step", func() {
		cfg := config.Default()
		cfg.IBM.CompletePLD = 2
		e.Seed(
			ensemble.Particle{Z: 0},
			ensemble.Particle{Z: -2, Length: 2},
			ensemble.Particle{Z: -40, Length: 0.1},
		)
		build(cfg)

		host.EXPECT().Advect(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil).AnyTimes()
		host.EXPECT().MixVertically(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil).AnyTimes()

		wasInactive := make([]bool, e.Len())
		for i := uint64(0); i < 72; i++ {
			before := append([]float64(nil), e.NSteps...)

			_, err := m.Step(hourly(i))
			Expect(err).NotTo(HaveOccurred())

			for p := 0; p < e.Len(); p++ {
				Expect(e.Z[p]).To(BeNumerically("<=", 0))
				Expect(e.NSteps[p]).To(Equal(before[p] + 1))

				if wasInactive[p] {
					Expect(e.Active[p]).To(BeFalse())
				}
				wasInactive[p] = !e.Active[p]
			}
		}

		Expect(m.StepsTaken()).To(Equal(uint64(72)))
		Expect(e.NumActive()).To(Equal(0))
	})

	It("should freeze the depth of deactivated larvae", func() {
		e.Seed(ensemble.Particle{Z: -5})
		build(config.Default())

		host.EXPECT().Advect(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil).AnyTimes()
		host.EXPECT().MixVertically(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil).AnyTimes()

		for i := uint64(0); i < 24; i++ {
			_, _ = m.Step(hourly(i))
		}

		frozen := e.Z[0]
		for i := uint64(24); i < 36; i++ {
			_, _ = m.Step(hourly(i))
		}

		Expect(e.Z[0]).To(Equal(frozen))
	})

	It("should report stages and the step through hooks", func() {
		e.Seed(ensemble.Particle{})
		build(config.Default())

		var seen []string
		m.AcceptHook(hooking.HookFunc(func(ctx hooking.HookCtx) {
			entry := ctx.Pos.Name
			if name, ok := ctx.Item.(string); ok {
				entry += ":" + name
			}
			seen = append(seen, entry)
		}))

		host.EXPECT().Advect(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
		host.EXPECT().MixVertically(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

		_, err := m.Step(hourly(0))

		Expect(err).NotTo(HaveOccurred())
		Expect(seen).To(Equal([]string{
			"StepStart",
			"AfterStage:migration",
			"AfterStage:mortality",
			"AfterStage:advection",
			"AfterStage:mixing",
			"StepEnd",
		}))
	})

	It("should abort the step when the host fails", func() {
		e.Seed(ensemble.Particle{})
		build(config.Default())

		host.EXPECT().Advect(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(errors.New("no current data"))

		_, err := m.Step(hourly(0))

		Expect(err).To(MatchError(ContainSubstring("advection")))
		Expect(err).To(MatchError(ContainSubstring("no current data")))
		Expect(m.StepsTaken()).To(Equal(uint64(0)))
	})

	It("should count host deactivations in the report", func() {
		e.Seed(ensemble.Particle{}, ensemble.Particle{})
		build(config.Default())

		host.EXPECT().Advect(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(
				e *ensemble.Ensemble, sel ensemble.Selection, _ timing.Clock,
			) error {
				e.Deactivate(sel, func(i int) bool { return i == 1 }, "stranded")
				return nil
			})
		host.EXPECT().MixVertically(e, ensemble.Selection{0}, gomock.Any()).Return(nil)

		report, err := m.Step(hourly(0))

		Expect(err).NotTo(HaveOccurred())
		Expect(report.Deactivated).To(Equal(1))
		Expect(report.Stages[2].Deactivated).To(Equal(1))
		Expect(m.LastReport().Ensemble.Active).To(Equal(1))
	})
})
