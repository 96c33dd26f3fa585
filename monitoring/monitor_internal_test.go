package monitoring

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/larvadrift/behavior"
	"github.com/sarchlab/larvadrift/ensemble"
	"github.com/sarchlab/larvadrift/model"
	"github.com/sarchlab/larvadrift/sim/timing"
)

type fakeEngine struct {
	now    timing.VTimeInSec
	paused bool
}

func (e *fakeEngine) CurrentTime() timing.VTimeInSec { return e.now }
func (e *fakeEngine) Pause()                         { e.paused = true }
func (e *fakeEngine) Continue()                      { e.paused = false }

type fakeModel struct {
	report    model.StepReport
	migration behavior.Stage
}

func (f *fakeModel) LastReport() model.StepReport { return f.report }
func (f *fakeModel) StepsTaken() uint64           { return f.report.Step + 1 }

func (f *fakeModel) Stage(name string) behavior.Stage {
	if name == behavior.StageMigration {
		return f.migration
	}

	return nil
}

var _ = Describe("Monitor", func() {
	var (
		m      *Monitor
		engine *fakeEngine
		md     *fakeModel
		server *httptest.Server
	)

	get := func(path string) *http.Response {
		rsp, err := http.Get(server.URL + path)
		Expect(err).ToNot(HaveOccurred())

		return rsp
	}

	BeforeEach(func() {
		engine = &fakeEngine{now: 7200}
		md = &fakeModel{
			report: model.StepReport{
				Step: 2,
				Time: time.Date(2024, 1, 1, 2, 0, 0, 0, time.UTC),
				Stages: []behavior.StageReport{
					{Stage: behavior.StageMortality, Selected: 3, Deactivated: 1},
				},
				Deactivated: 1,
				Ensemble:    ensemble.Summary{Total: 3, Active: 2, Inactive: 1},
			},
			migration: behavior.NewDielVerticalMigration(nil),
		}

		m = NewMonitor()
		m.RegisterEngine(engine)
		m.RegisterModel(md)

		server = httptest.NewServer(m.Router())
	})

	AfterEach(func() {
		server.Close()
	})

	It("should pause and continue the engine", func() {
		rsp := get("/api/pause")
		rsp.Body.Close()

		Expect(rsp.StatusCode).To(Equal(http.StatusOK))
		Expect(engine.paused).To(BeTrue())

		rsp = get("/api/continue")
		rsp.Body.Close()

		Expect(engine.paused).To(BeFalse())
	})

	It("should report the current time", func() {
		rsp := get("/api/now")
		defer rsp.Body.Close()

		var body struct {
			Now float64 `json:"now"`
		}
		Expect(json.NewDecoder(rsp.Body).Decode(&body)).To(Succeed())
		Expect(body.Now).To(BeNumerically("~", 7200, 1e-6))
	})

	It("should report the last step", func() {
		rsp := get("/api/ensemble")
		defer rsp.Body.Close()

		var body struct {
			Step       uint64 `json:"step"`
			StepsTaken uint64 `json:"steps_taken"`
			Ensemble   struct {
				Active int `json:"active"`
			} `json:"ensemble"`
			Stages []struct {
				Stage       string `json:"stage"`
				Deactivated int    `json:"deactivated"`
			} `json:"stages"`
		}
		Expect(json.NewDecoder(rsp.Body).Decode(&body)).To(Succeed())

		Expect(body.Step).To(Equal(uint64(2)))
		Expect(body.StepsTaken).To(Equal(uint64(3)))
		Expect(body.Ensemble.Active).To(Equal(2))
		Expect(body.Stages).To(HaveLen(1))
		Expect(body.Stages[0].Stage).To(Equal(behavior.StageMortality))
		Expect(body.Stages[0].Deactivated).To(Equal(1))
	})

	It("should serialize a known stage", func() {
		rsp := get("/api/stage/" + behavior.StageMigration)
		defer rsp.Body.Close()

		Expect(rsp.StatusCode).To(Equal(http.StatusOK))
	})

	It("should return 404 for an unknown stage", func() {
		rsp := get("/api/stage/nothing")
		defer rsp.Body.Close()

		Expect(rsp.StatusCode).To(Equal(http.StatusNotFound))
	})

	It("should list and complete progress bars", func() {
		bar := m.CreateProgressBar("steps", 10)
		bar.IncrementInProgress(2)
		bar.MoveInProgressToFinished(1)

		rsp := get("/api/progress")

		var bars []progressSnapshot
		Expect(json.NewDecoder(rsp.Body).Decode(&bars)).To(Succeed())
		rsp.Body.Close()

		Expect(bars).To(HaveLen(1))
		Expect(bars[0].Name).To(Equal("steps"))
		Expect(bars[0].Total).To(Equal(uint64(10)))
		Expect(bars[0].Finished).To(Equal(uint64(1)))
		Expect(bars[0].InProgress).To(Equal(uint64(1)))

		m.CompleteProgressBar(bar)
		Expect(m.progressBars).To(BeEmpty())
	})

	It("should refuse privileged ports", func() {
		m.WithPortNumber(80)
		Expect(m.portNumber).To(Equal(0))

		m.WithPortNumber(32000)
		Expect(m.portNumber).To(Equal(32000))
	})

	It("should serve the web page", func() {
		rsp := get("/")
		defer rsp.Body.Close()

		Expect(rsp.StatusCode).To(Equal(http.StatusOK))
	})
})
