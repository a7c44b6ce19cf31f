package models

// Arch is the CPU architecture tag derived from an instance name.
type Arch string

const (
	ArchX86_64 Arch = "x86_64"
	ArchAMD64  Arch = "amd64"
	ArchARM64  Arch = "arm64"
)

// ValidArches lists every architecture tag in display order.
var ValidArches = []Arch{ArchX86_64, ArchAMD64, ArchARM64}

// Instance is a single row of the pricing table.
// It is built once per catalog load and treated as read-only afterwards.
// Nil pointer fields mean the value was missing or unparseable in the source.
type Instance struct {
	APIName  string   `json:"api_name"`
	VCPUs    int      `json:"vcpus"`
	MemoryGB float64  `json:"memory_gb"`
	Price    *float64 `json:"price,omitempty"`
	Spot     *float64 `json:"spot,omitempty"`
	Arch     Arch     `json:"arch"`
	EBSMbps  *int     `json:"ebs_mbps,omitempty"`
	NVMe     bool     `json:"nvme"`
	NVMeGB   *int     `json:"nvme_gb,omitempty"`
}

// HasPrice reports whether the on-demand price is known.
func (i Instance) HasPrice() bool {
	return i.Price != nil
}

// PriceRange is the cheapest and most expensive priced instance selected by a
// runner configuration.
type PriceRange struct {
	Min         float64 `json:"min"`
	Max         float64 `json:"max"`
	MinInstance string  `json:"min_instance"`
	MaxInstance string  `json:"max_instance"`
}

// Float64 returns a pointer to v. Used for optional numeric fields.
func Float64(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }

// Bool returns a pointer to v.
func Bool(v bool) *bool { return &v }
