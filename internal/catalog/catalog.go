// Package catalog reads and writes the instance pricing table.
//
// The table is a CSV file with one row per instance type. Only the columns
// listed in Columns are consumed; any other column is ignored. A snapshot of
// the table is compiled into the binary and is used when no file is given.
package catalog

import (
	"bytes"
	_ "embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/pankaj-dahiya-devops/runson/internal/inference"
	"github.com/pankaj-dahiya-devops/runson/internal/models"
)

// Column headers consumed from the pricing table.
const (
	ColAPIName  = "API Name"
	ColVCPUs    = "vCPUs"
	ColMemory   = "Instance Memory"
	ColOnDemand = "On Demand"
	ColSpot     = "Linux Spot Minimum cost"
	ColEBS      = "EBS Optimized: Baseline Bandwidth"
	ColStorage  = "Instance Storage"
)

// Columns lists the consumed headers in the order WriteCSV emits them.
var Columns = []string{ColAPIName, ColVCPUs, ColMemory, ColOnDemand, ColSpot, ColEBS, ColStorage}

// BundledName is the display name used for the compiled-in snapshot.
const BundledName = "bundled snapshot"

//go:embed data/amz-prices.csv
var bundled []byte

// ErrMissingColumn is returned when a required header is absent.
var ErrMissingColumn = errors.New("missing column")

// Loader turns pricing-table rows into instances. Architecture is derived
// from the instance name by the classifier, never read from the table.
type Loader struct {
	classifier inference.Classifier
	logger     log.Logger
}

// NewLoader returns a Loader. A nil classifier selects the name heuristic
// and a nil logger discards output.
func NewLoader(classifier inference.Classifier, logger log.Logger) *Loader {
	if classifier == nil {
		classifier = inference.NewHeuristicClassifier()
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Loader{classifier: classifier, logger: log.With(logger, "component", "catalog")}
}

// Load parses a pricing table. Rows without a name, a vCPU count or a memory
// size are skipped.
func (l *Loader) Load(r io.Reader) ([]models.Instance, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return []models.Instance{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[h] = i
	}
	for _, required := range []string{ColAPIName, ColVCPUs, ColMemory} {
		if _, ok := idx[required]; !ok {
			return nil, fmt.Errorf("%w %q", ErrMissingColumn, required)
		}
	}

	field := func(rec []string, col string) string {
		i, ok := idx[col]
		if !ok || i >= len(rec) {
			return ""
		}
		return rec[i]
	}

	instances := []models.Instance{}
	line := 1
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", line, err)
		}

		name := field(rec, ColAPIName)
		vcpus, okCPU := ParseVCPUs(field(rec, ColVCPUs))
		mem, okMem := ParseMemoryGB(field(rec, ColMemory))
		if name == "" || !okCPU || !okMem {
			level.Debug(l.logger).Log("msg", "skipping row", "line", line, "api_name", name)
			continue
		}

		storage := field(rec, ColStorage)
		nvme := ParseHasLocalNVMe(storage)
		var nvmeGB *int
		if nvme {
			nvmeGB = ParseLocalStorageGB(storage)
		}

		instances = append(instances, models.Instance{
			APIName:  name,
			VCPUs:    vcpus,
			MemoryGB: mem,
			Price:    ParseHourlyCost(field(rec, ColOnDemand)),
			Spot:     ParseHourlyCost(field(rec, ColSpot)),
			Arch:     l.classifier.Arch(name),
			EBSMbps:  ParseEBSBandwidth(field(rec, ColEBS)),
			NVMe:     nvme,
			NVMeGB:   nvmeGB,
		})
	}

	level.Debug(l.logger).Log("msg", "catalog parsed", "rows", len(instances))
	return instances, nil
}

// LoadFile parses the pricing table at path.
func (l *Loader) LoadFile(path string) ([]models.Instance, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	instances, err := l.Load(f)
	if err != nil {
		return nil, fmt.Errorf("load catalog %q: %w", path, err)
	}
	return instances, nil
}

// LoadBundled parses the compiled-in snapshot.
func (l *Loader) LoadBundled() ([]models.Instance, error) {
	instances, err := l.Load(bytes.NewReader(bundled))
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", BundledName, err)
	}
	return instances, nil
}

// LoadPath parses path, or the bundled snapshot when path is empty.
func (l *Loader) LoadPath(path string) ([]models.Instance, error) {
	if path == "" {
		return l.LoadBundled()
	}
	return l.LoadFile(path)
}

// Source returns a human-readable name for the table LoadPath reads.
func Source(path string) string {
	if path == "" {
		return BundledName
	}
	return path
}

// WriteCSV writes instances in the pricing-table format read by Load.
func WriteCSV(w io.Writer, instances []models.Instance) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, inst := range instances {
		if err := cw.Write(record(inst)); err != nil {
			return fmt.Errorf("write %s: %w", inst.APIName, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func record(inst models.Instance) []string {
	return []string{
		inst.APIName,
		fmt.Sprintf("%d vCPUs", inst.VCPUs),
		strconv.FormatFloat(inst.MemoryGB, 'f', -1, 64) + " GiB",
		hourly(inst.Price),
		hourly(inst.Spot),
		mbps(inst.EBSMbps),
		storage(inst),
	}
}

func hourly(v *float64) string {
	if v == nil {
		return ""
	}
	return "$" + strconv.FormatFloat(*v, 'f', -1, 64) + " hourly"
}

func mbps(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v) + " Mbps"
}

func storage(inst models.Instance) string {
	switch {
	case inst.NVMe && inst.NVMeGB != nil:
		return strconv.Itoa(*inst.NVMeGB) + " GB NVMe SSD"
	case inst.NVMe:
		return "NVMe SSD"
	default:
		return "EBS only"
	}
}
