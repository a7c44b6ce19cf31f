package catalog

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/pankaj-dahiya-devops/runson/internal/models"
	"github.com/pankaj-dahiya-devops/runson/internal/models/modelstest"
)

const sampleCSV = `API Name,vCPUs,Instance Memory,On Demand,Linux Spot Minimum cost,EBS Optimized: Baseline Bandwidth,Instance Storage
m7i.large,2 vCPUs,8 GiB,$0.096 hourly,$0.038 hourly,10000 Mbps,EBS only
m7i.xlarge,4 vCPUs,16 GiB,$0.192 hourly,$0.077 hourly,10000 Mbps,EBS only
m7i.2xlarge,8 vCPUs,32 GiB,$0.384 hourly,$0.154 hourly,10000 Mbps,EBS only
m7a.large,2 vCPUs,8 GiB,$0.102 hourly,$0.041 hourly,10000 Mbps,EBS only
m7a.xlarge,4 vCPUs,16 GiB,$0.204 hourly,$0.082 hourly,10000 Mbps,EBS only
m7g.large,2 vCPUs,8 GiB,$0.082 hourly,$0.033 hourly,10000 Mbps,EBS only
m7g.xlarge,4 vCPUs,16 GiB,$0.163 hourly,$0.065 hourly,10000 Mbps,EBS only
m7gd.large,2 vCPUs,8 GiB,$0.095 hourly,$0.038 hourly,10000 Mbps,118 GB NVMe SSD
m7gd.xlarge,4 vCPUs,16 GiB,$0.190 hourly,$0.076 hourly,10000 Mbps,237 GB NVMe SSD
c7i.large,2 vCPUs,4 GiB,$0.085 hourly,$0.034 hourly,10000 Mbps,EBS only
c7i.xlarge,4 vCPUs,8 GiB,$0.170 hourly,$0.068 hourly,10000 Mbps,EBS only
r7i.large,2 vCPUs,16 GiB,$0.126 hourly,$0.050 hourly,10000 Mbps,EBS only
r7i.xlarge,4 vCPUs,32 GiB,$0.252 hourly,$0.101 hourly,10000 Mbps,EBS only
r7a.large,2 vCPUs,16 GiB,$0.134 hourly,$0.054 hourly,10000 Mbps,EBS only
r7gd.large,2 vCPUs,16 GiB,$0.145 hourly,$0.058 hourly,10000 Mbps,118 GB NVMe SSD
t4g.small,2 vCPUs,2 GiB,$0.017 hourly,$0.005 hourly,,EBS only
a1.medium,1 vCPUs,2 GiB,$0.025 hourly,$0.008 hourly,,EBS only
p5.48xlarge,192 vCPUs,2048 GiB,$98.32 hourly,$29.50 hourly,80000 Mbps,8x3800 GB NVMe SSD
`

func TestLoad_SampleTable(t *testing.T) {
	got, err := NewLoader(nil, nil).Load(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := modelstest.SampleInstances()
	if !reflect.DeepEqual(got, want) {
		for i := range want {
			if i < len(got) && !reflect.DeepEqual(got[i], want[i]) {
				t.Errorf("row %d: got %+v; want %+v", i, got[i], want[i])
			}
		}
		t.Fatalf("loaded %d rows; want %d", len(got), len(want))
	}
}

func TestLoad_InfersArchitectures(t *testing.T) {
	got, err := NewLoader(nil, nil).Load(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	arch := map[string]models.Arch{}
	for _, inst := range got {
		arch[inst.APIName] = inst.Arch
	}
	for name, want := range map[string]models.Arch{
		"m7i.large": models.ArchX86_64,
		"m7a.large": models.ArchAMD64,
		"m7g.large": models.ArchARM64,
		"t4g.small": models.ArchARM64,
		"a1.medium": models.ArchARM64,
	} {
		if arch[name] != want {
			t.Errorf("%s arch = %q; want %q", name, arch[name], want)
		}
	}
}

type fixedClassifier struct{}

func (fixedClassifier) Arch(string) models.Arch  { return models.ArchARM64 }
func (fixedClassifier) Category(string) string { return "general" }

func TestLoad_UsesClassifier(t *testing.T) {
	got, err := NewLoader(fixedClassifier{}, nil).Load(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, inst := range got {
		if inst.Arch != models.ArchARM64 {
			t.Fatalf("%s arch = %q; classifier not used", inst.APIName, inst.Arch)
		}
	}
}

func TestLoad_SkipsIncompleteRows(t *testing.T) {
	csv := `API Name,vCPUs,Instance Memory,On Demand
,2 vCPUs,8 GiB,$0.1 hourly
m7i.large,,8 GiB,$0.1 hourly
m7i.xlarge,4 vCPUs,,$0.2 hourly
m7i.2xlarge,8 vCPUs,32 GiB,unavailable
`
	got, err := NewLoader(nil, nil).Load(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].APIName != "m7i.2xlarge" {
		t.Fatalf("got %v; want only m7i.2xlarge", modelstest.Names(got))
	}
	if got[0].Price != nil {
		t.Errorf("unparseable price should be unknown, got %v", *got[0].Price)
	}
	if got[0].EBSMbps != nil || got[0].NVMe {
		t.Error("absent columns should leave EBS unknown and NVMe false")
	}
}

func TestLoad_MissingRequiredColumn(t *testing.T) {
	_, err := NewLoader(nil, nil).Load(strings.NewReader("API Name,vCPUs\nm7i.large,2 vCPUs\n"))
	if !errors.Is(err, ErrMissingColumn) {
		t.Fatalf("expected ErrMissingColumn, got %v", err)
	}
}

func TestLoad_Empty(t *testing.T) {
	got, err := NewLoader(nil, nil).Load(strings.NewReader(""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("got %d rows from empty input", len(got))
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "amz-prices.csv")
	if err := os.WriteFile(path, []byte(sampleCSV), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := NewLoader(nil, nil).LoadPath(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 18 {
		t.Fatalf("loaded %d rows; want 18", len(got))
	}

	if _, err := NewLoader(nil, nil).LoadFile(filepath.Join(t.TempDir(), "missing.csv")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadBundled(t *testing.T) {
	got, err := NewLoader(nil, nil).LoadPath("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) < 18 {
		t.Fatalf("bundled snapshot has %d rows", len(got))
	}

	// every sample row is present with the same data
	byName := map[string]models.Instance{}
	for _, inst := range got {
		if _, dup := byName[inst.APIName]; dup {
			t.Errorf("duplicate row %s", inst.APIName)
		}
		byName[inst.APIName] = inst
	}
	for _, want := range modelstest.SampleInstances() {
		if inst, ok := byName[want.APIName]; !ok || !reflect.DeepEqual(inst, want) {
			t.Errorf("bundled %s = %+v; want %+v", want.APIName, inst, want)
		}
	}

	if Source("") != BundledName || Source("x.csv") != "x.csv" {
		t.Error("Source should name the bundled snapshot only for an empty path")
	}
}

func TestWriteCSV_ReadsBack(t *testing.T) {
	want := modelstest.SampleInstances()

	var buf bytes.Buffer
	if err := WriteCSV(&buf, want); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(buf.String(), strings.Join(Columns, ",")+"\n") {
		t.Errorf("unexpected header: %q", strings.SplitN(buf.String(), "\n", 2)[0])
	}

	got, err := NewLoader(nil, nil).Load(&buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("written table does not load back to the same instances")
	}
}
