// Package inference derives architecture and instance category from an
// instance API name using the vendor naming convention
// <category><generation><variant>.<size>.
//
// The functions are heuristics over the name, not a lookup table, so they keep
// working for families that did not exist when the catalog snapshot was taken.
package inference

import (
	"strings"

	"github.com/pankaj-dahiya-devops/runson/internal/models"
)

// Category names returned by InstanceCategory.
const (
	CategoryCompute     = "compute"
	CategoryGeneral     = "general"
	CategoryMemory      = "memory"
	CategoryBurstable   = "burstable"
	CategoryStorage     = "storage"
	CategoryHighFreq    = "high-freq"
	CategoryGPU         = "gpu"
	CategoryFPGA        = "fpga"
	CategoryVideo       = "video"
	CategoryMLInference = "ml-inference"
	CategoryOther       = "other"
)

// categories maps the first character of a family prefix to its category.
var categories = map[byte]string{
	'c': CategoryCompute,
	'm': CategoryGeneral,
	'r': CategoryMemory,
	't': CategoryBurstable,
	'i': CategoryStorage,
	'x': CategoryMemory,
	'z': CategoryHighFreq,
	'g': CategoryGPU,
	'p': CategoryGPU,
	'h': CategoryStorage,
	'd': CategoryStorage,
	'f': CategoryFPGA,
	'v': CategoryVideo,
}

// FamilyPrefix returns the part of name before the first ".", or name itself
// when it has no size suffix. "r7i.2xlarge" -> "r7i".
func FamilyPrefix(name string) string {
	if i := strings.IndexByte(name, '.'); i >= 0 {
		return name[:i]
	}
	return name
}

// InferArch classifies name by the processor letters that follow the
// category and generation characters:
//
//	g anywhere in the suffix (m7g, r8gd, c7gn), a1 and t4g -> arm64
//	a in the suffix (m7a, r6ad)                           -> amd64
//	anything else (m7i, c5d, m5)                          -> x86_64
func InferArch(name string) models.Arch {
	family := strings.ToLower(FamilyPrefix(name))
	if len(family) < 2 {
		return models.ArchX86_64
	}

	suffix := family[2:]
	if strings.Contains(suffix, "g") || strings.HasPrefix(family, "a1") || strings.HasPrefix(family, "t4g") {
		return models.ArchARM64
	}
	if strings.Contains(suffix, "a") {
		return models.ArchAMD64
	}
	return models.ArchX86_64
}

// InstanceCategory returns the workload category of name. Names whose family
// starts with "inf" are ml-inference and "a1" is general purpose; otherwise
// the first character decides. Unknown or empty families are "other".
func InstanceCategory(name string) string {
	family := strings.ToLower(FamilyPrefix(name))
	if family == "" {
		return CategoryOther
	}

	if strings.HasPrefix(family, "inf") {
		return CategoryMLInference
	}
	if strings.HasPrefix(family, "a1") {
		return CategoryGeneral
	}

	if c, ok := categories[family[0]]; ok {
		return c
	}
	return CategoryOther
}
