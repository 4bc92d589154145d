package launcher

import (
	"strconv"
	"strings"
)

// DefaultMemoryMB is used when an instance has no memory setting.
const DefaultMemoryMB = 2048

// FullscreenFlag is appended to the launch command when fullscreen is on.
const FullscreenFlag = "--fullscreen"

// launchCommand renders the launch template for inst. The first element is
// the java binary.
func launchCommand(java string, template []string, inst Instance, dir string) []string {
	memory := inst.MemoryMB
	if memory <= 0 {
		memory = DefaultMemoryMB
	}
	r := strings.NewReplacer(
		"{dir}", dir,
		"{version}", inst.GameVersion,
		"{loader}", string(inst.Loader),
		"{loader_version}", inst.LoaderVersion,
		"{memory}", strconv.Itoa(memory),
		"{name}", inst.Name,
	)

	argv := make([]string, 0, len(template)+2)
	argv = append(argv, java)
	for _, arg := range template {
		argv = append(argv, r.Replace(arg))
	}
	if inst.Fullscreen != nil && *inst.Fullscreen {
		argv = append(argv, FullscreenFlag)
	}
	return argv
}
