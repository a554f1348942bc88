package galaxy

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Resources is whatever an Uploader allocated for a cloud (GPU buffers).
type Resources interface {
	Release()
}

// Uploader turns a generated cloud into drawable resources.
type Uploader interface {
	Upload(cloud *PointCloud) (Resources, error)
}

// Galaxy owns the single live point cloud. Regenerate always releases the
// previous cloud's resources before building the next one, so at most one
// cloud is resident at any time.
type Galaxy struct {
	uploader Uploader
	rng      RandomSource
	logger   Logger

	cloud       *PointCloud
	resources   Resources
	generations int
}

func NewGalaxy(uploader Uploader, rng RandomSource, logger Logger) *Galaxy {
	if logger == nil {
		logger = NewNopLogger()
	}
	return &Galaxy{
		uploader: uploader,
		rng:      rng,
		logger:   logger,
	}
}

func (g *Galaxy) Regenerate(params GenerationParameters) (*PointCloud, error) {
	g.Release()

	start := time.Now()
	cloud := Generate(params, g.rng)
	cloud.ID = uuid.NewString()
	genTime := time.Since(start)

	if g.uploader != nil {
		res, err := g.uploader.Upload(cloud)
		if err != nil {
			return nil, fmt.Errorf("upload cloud %s: %w", cloud.ID, err)
		}
		g.resources = res
	}
	g.cloud = cloud
	g.generations++

	g.logger.Debugf("galaxy %s generated: %d points in %s (%s)", cloud.ID, cloud.Len(), genTime, params)
	return cloud, nil
}

// Release frees the live cloud, if any.
func (g *Galaxy) Release() {
	if g.resources != nil {
		g.resources.Release()
		g.resources = nil
	}
	if g.cloud != nil {
		g.logger.Debugf("galaxy %s released", g.cloud.ID)
		g.cloud = nil
	}
}

func (g *Galaxy) Cloud() *PointCloud {
	return g.cloud
}

// Live reports how many clouds are currently resident: 0 or 1.
func (g *Galaxy) Live() int {
	if g.cloud == nil {
		return 0
	}
	return 1
}

func (g *Galaxy) Generations() int {
	return g.generations
}
