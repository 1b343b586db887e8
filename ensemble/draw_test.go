// SPDX-License-Identifier: MIT

package ensemble_test

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/aymanalz/pyemu/control"
	"github.com/aymanalz/pyemu/control/controltest"
	"github.com/aymanalz/pyemu/covariance"
	"github.com/aymanalz/pyemu/ensemble"
	"github.com/aymanalz/pyemu/matrix"
)

const (
	momentReals = 5000
	momentTol   = 0.05
)

// MomentSuite checks that large gaussian draws reproduce the prior mean and
// standard deviation in estimation space under every covariance mode.
type MomentSuite struct {
	suite.Suite
	p *control.Problem
}

func (s *MomentSuite) SetupTest() { s.p = controltest.Problem(s.T()) }

func (s *MomentSuite) checkMoments(e *ensemble.Ensemble) {
	s.Require().NoError(e.ToEstimation())
	means, err := e.Mean()
	s.Require().NoError(err)
	stds, err := e.Std()
	s.Require().NoError(err)
	for j, name := range e.Columns() {
		par, _ := s.p.Parameter(name)
		if !par.Adjustable() {
			s.InDelta(0, stds[j], 1e-12, name)
			continue
		}
		lo, hi := par.EstimationBounds()
		s.InDelta(par.EstimationValue(), means[j], momentTol, name)
		s.InDelta((hi-lo)/ensemble.DefaultSigmaRange, stds[j], momentTol, name)
	}
}

func (s *MomentSuite) TestByGroupsFromBounds() {
	e, err := ensemble.DrawParameters(s.p, ensemble.Gaussian, momentReals, ensemble.WithSeed(101))
	s.Require().NoError(err)
	s.Equal(momentReals, e.Rows())
	s.checkMoments(e)
}

func (s *MomentSuite) TestByGroupsWithDenseCov() {
	prior, err := covariance.FromParameterData(s.p, ensemble.DefaultSigmaRange)
	s.Require().NoError(err)
	d := prior.Dense()
	// Correlate hk1 and hk2 at 0.5.
	v1, _ := d.At(0, 0)
	v2, _ := d.At(1, 1)
	c := 0.5 * math.Sqrt(v1*v2)
	s.Require().NoError(d.Set(0, 1, c))
	s.Require().NoError(d.Set(1, 0, c))
	cov, err := covariance.New(prior.Names(), d)
	s.Require().NoError(err)

	e, err := ensemble.DrawParameters(s.p, ensemble.Gaussian, momentReals,
		ensemble.WithSeed(202), ensemble.WithCov(cov))
	s.Require().NoError(err)
	s.checkMoments(e)

	est, err := e.Covariance()
	s.Require().NoError(err)
	c12 := est.Dense()
	got, _ := c12.At(0, 1)
	s.InDelta(c, got, 0.05*math.Sqrt(v1*v2))
}

func (s *MomentSuite) TestWhole() {
	e, err := ensemble.DrawParameters(s.p, ensemble.Gaussian, momentReals,
		ensemble.WithSeed(303), ensemble.WithGroupMode(ensemble.Whole))
	s.Require().NoError(err)
	s.checkMoments(e)
}

func (s *MomentSuite) TestSigmaRange() {
	e, err := ensemble.DrawParameters(s.p, ensemble.Gaussian, momentReals,
		ensemble.WithSeed(404), ensemble.WithSigmaRange(2), ensemble.WithFill(false))
	s.Require().NoError(err)
	s.Require().NoError(e.ToEstimation())
	stds, err := e.Std()
	s.Require().NoError(err)
	for j, name := range e.Columns() {
		par, _ := s.p.Parameter(name)
		lo, hi := par.EstimationBounds()
		s.InDelta((hi-lo)/2, stds[j], momentTol, name)
	}
}

// checkObservationMoments expects mean obsval and standard deviation 1/weight
// for every drawn observation, within a tolerance relative to that deviation.
func (s *MomentSuite) checkObservationMoments(e *ensemble.Ensemble) {
	s.Equal(s.p.NonzeroObsNames(), e.Columns())
	means, err := e.Mean()
	s.Require().NoError(err)
	stds, err := e.Std()
	s.Require().NoError(err)
	for j, name := range e.Columns() {
		ob, _ := s.p.Observation(name)
		sd := 1 / ob.Weight
		s.InDelta(ob.Value, means[j], momentTol*sd, name)
		s.InDelta(sd, stds[j], momentTol*sd, name)
	}
}

func (s *MomentSuite) TestObservations() {
	prior, err := covariance.FromObservationData(s.p)
	s.Require().NoError(err)

	cases := []struct {
		name string
		opts []ensemble.Option
	}{
		{"by groups", []ensemble.Option{ensemble.WithSeed(505)}},
		{"explicit cov", []ensemble.Option{ensemble.WithSeed(606), ensemble.WithCov(prior)}},
		{"whole", []ensemble.Option{ensemble.WithSeed(707), ensemble.WithGroupMode(ensemble.Whole)}},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			e, err := ensemble.DrawObservations(s.p, momentReals, tc.opts...)
			s.Require().NoError(err)
			s.Equal(momentReals, e.Rows())
			s.checkObservationMoments(e)
		})
	}
}

func TestMomentSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("large draws")
	}
	suite.Run(t, new(MomentSuite))
}

func TestDraw_FillParameters(t *testing.T) {
	p := controltest.Problem(t)

	full := mustDraw(t, p, ensemble.Gaussian, 30)
	require.Equal(t, p.ParNames(), full.Columns())
	for _, name := range []string{"ss", "hk3"} {
		par, _ := p.Parameter(name)
		for _, v := range column(t, full, name) {
			require.Equal(t, par.Value, v, name)
		}
	}

	adj := mustDraw(t, p, ensemble.Gaussian, 30, ensemble.WithFill(false))
	require.Equal(t, p.AdjParNames(), adj.Columns())
	require.Equal(t, p.NParAdj(), adj.Cols())
	require.Equal(t, []string{"0", "1", "2"}, adj.IDs()[:3])
}

func TestDraw_FillObservations(t *testing.T) {
	p := controltest.Problem(t)

	oe, err := ensemble.DrawObservations(p, 30)
	require.NoError(t, err)
	require.Equal(t, p.NonzeroObsNames(), oe.Columns())

	oe, err = ensemble.DrawObservations(p, 30, ensemble.WithFill(true))
	require.NoError(t, err)
	require.Equal(t, p.ObsNames(), oe.Columns())
	for _, name := range p.ZeroWeightObsNames() {
		ob, _ := p.Observation(name)
		for _, v := range column(t, oe, name) {
			require.Equal(t, ob.Value, v, name)
		}
	}
}

func TestDraw_UniformAndTriangular(t *testing.T) {
	p := controltest.Problem(t)
	for _, dist := range []ensemble.Distribution{ensemble.Uniform, ensemble.Triangular} {
		t.Run(dist.String(), func(t *testing.T) {
			e := mustDraw(t, p, dist, 2000, ensemble.WithSeed(17))
			require.Equal(t, p.ParNames(), e.Columns())
			for _, par := range p.Parameters() {
				col := column(t, e, par.Name)
				if !par.Adjustable() {
					for _, v := range col {
						require.Equal(t, par.Value, v)
					}
					continue
				}
				for _, v := range col {
					require.GreaterOrEqual(t, v, par.Lower*(1-1e-12), par.Name)
					require.LessOrEqual(t, v, par.Upper*(1+1e-12), par.Name)
				}
			}

			require.NoError(t, e.ToEstimation())
			means, err := e.Mean()
			require.NoError(t, err)
			for j, name := range e.Columns() {
				par, _ := p.Parameter(name)
				if !par.Adjustable() {
					continue
				}
				lo, hi := par.EstimationBounds()
				want := (lo + hi) / 2
				if dist == ensemble.Triangular {
					want = (lo + hi + par.EstimationValue()) / 3
				}
				require.InDelta(t, want, means[j], (hi-lo)*0.05, name)
			}
		})
	}
}

func TestDraw_DegenerateBounds(t *testing.T) {
	p := controltest.Modify(t, func(pars []control.Parameter, _ []control.Observation) {
		pars[3].Lower, pars[3].Upper = pars[3].Value, pars[3].Value // sy
	})
	for _, dist := range []ensemble.Distribution{ensemble.Gaussian, ensemble.Uniform, ensemble.Triangular} {
		e := mustDraw(t, p, dist, 10)
		for _, v := range column(t, e, "sy") {
			require.Equal(t, 0.1, v, dist.String())
		}
	}
}

func TestDraw_Errors(t *testing.T) {
	p := controltest.Problem(t)

	_, err := ensemble.DrawParameters(p, ensemble.Gaussian, 0)
	require.ErrorIs(t, err, ensemble.ErrInvalidArgument)
	_, err = ensemble.DrawParameters(nil, ensemble.Gaussian, 3)
	require.ErrorIs(t, err, ensemble.ErrInvalidArgument)
	_, err = ensemble.Draw(p, ensemble.Observations, ensemble.Uniform, 3)
	require.ErrorIs(t, err, ensemble.ErrUnsupportedDistribution)
	_, err = ensemble.DrawParameters(p, ensemble.Distribution(9), 3)
	require.ErrorIs(t, err, ensemble.ErrUnsupportedDistribution)

	partial, err := covariance.NewDiagonal([]string{"hk1"}, []float64{0.1})
	require.NoError(t, err)
	_, err = ensemble.DrawParameters(p, ensemble.Gaussian, 3, ensemble.WithCov(partial))
	require.ErrorIs(t, err, ensemble.ErrMalformedCovariance)
	require.ErrorIs(t, err, covariance.ErrNameMismatch)

	outside := controltest.Modify(t, func(pars []control.Parameter, _ []control.Observation) {
		pars[6].Value = 12 // strt above its upper bound
	})
	_, err = ensemble.DrawParameters(outside, ensemble.Triangular, 3)
	require.ErrorIs(t, err, ensemble.ErrInfeasibleBounds)
}

func TestDraw_RankDeficientCovariance(t *testing.T) {
	p := controltest.AdjustableOnly(t)
	names := p.AdjParNames()
	n := len(names)
	// Rank one: every variable moves with the same standard normal.
	data := make([]float64, n*n)
	for k := range data {
		data[k] = 0.01
	}
	d, err := matrix.NewDenseFrom(n, n, data)
	require.NoError(t, err)
	cov, err := covariance.New(names, d)
	require.NoError(t, err)

	e := mustDraw(t, p, ensemble.Gaussian, 50, ensemble.WithCov(cov), ensemble.WithGroupMode(ensemble.Whole))
	require.NoError(t, e.ToEstimation())
	dev, err := e.Deviations()
	require.NoError(t, err)
	tb := dev.Table()
	for i := 0; i < tb.Rows(); i++ {
		for j := 1; j < tb.Cols(); j++ {
			require.InDelta(t, tb.At(i, 0), tb.At(i, j), 1e-6)
		}
	}
}

func TestDraw_Determinism(t *testing.T) {
	p := controltest.Problem(t)

	a := mustDraw(t, p, ensemble.Gaussian, 40, ensemble.WithSeed(77))
	b := mustDraw(t, p, ensemble.Gaussian, 40, ensemble.WithSeed(77), ensemble.WithParallel(true))
	require.True(t, a.Table().Equal(b.Table()), "parallel draw must match sequential")

	c := mustDraw(t, p, ensemble.Gaussian, 40, ensemble.WithSeed(78))
	require.False(t, a.Table().Equal(c.Table()))

	// Zero maps to the fixed default seed.
	z1 := mustDraw(t, p, ensemble.Uniform, 5)
	z2 := mustDraw(t, p, ensemble.Uniform, 5, ensemble.WithSeed(0))
	require.True(t, z1.Table().Equal(z2.Table()))

	// A source is consumed once per draw.
	src := rand.NewPCG(1, 2)
	s1 := mustDraw(t, p, ensemble.Gaussian, 5, ensemble.WithSource(src))
	s2 := mustDraw(t, p, ensemble.Gaussian, 5, ensemble.WithSource(src))
	require.False(t, s1.Table().Equal(s2.Table()))
	s3 := mustDraw(t, p, ensemble.Gaussian, 5, ensemble.WithSource(rand.NewPCG(1, 2)))
	require.True(t, s1.Table().Equal(s3.Table()))
}

func TestParseEnums(t *testing.T) {
	d, err := ensemble.ParseDistribution("Triangular")
	require.NoError(t, err)
	require.Equal(t, ensemble.Triangular, d)
	_, err = ensemble.ParseDistribution("beta")
	require.ErrorIs(t, err, ensemble.ErrUnsupportedDistribution)

	pol, err := ensemble.ParsePolicy("SCALE")
	require.NoError(t, err)
	require.Equal(t, ensemble.Scale, pol)
	_, err = ensemble.ParsePolicy("clip")
	require.ErrorIs(t, err, ensemble.ErrInvalidArgument)

	g, err := ensemble.ParseGroupMode("whole")
	require.NoError(t, err)
	require.Equal(t, ensemble.Whole, g)
	require.Equal(t, "by_groups", ensemble.ByGroups.String())
}
