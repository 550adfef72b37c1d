/*package bodies maps NAIF integer identifiers to human-readable names for
the bodies that show up in planetary ephemerides. The table is static and
deliberately small: the planets and Sun, the Moon and Earth, the barycenter
entries the kernels publish alongside them, and the minor bodies the big
distributed kernels actually carry. The DE kernels serve each planet under
its small barycenter identifier, so ids 1 through 9 carry the plain planet
names. Identifiers without an entry still get a usable placeholder name.
*/
package bodies

import "fmt"

// NAIF assigns asteroids the identifier 2000000 plus their minor planet
// number.
const minorPlanetBase = 2000000

var names = map[int]string{
	1:  "Mercury",
	2:  "Venus",
	3:  "Earth-Moon Barycenter",
	4:  "Mars",
	5:  "Jupiter",
	6:  "Saturn",
	7:  "Uranus",
	8:  "Neptune",
	9:  "Pluto",
	10: "Sun",

	199: "Mercury Barycenter",
	299: "Venus Barycenter",
	301: "Moon",
	399: "Earth",

	minorPlanetBase + 1:      "Ceres",
	minorPlanetBase + 2:      "Pallas",
	minorPlanetBase + 3:      "Juno",
	minorPlanetBase + 4:      "Vesta",
	minorPlanetBase + 7:      "Iris",
	minorPlanetBase + 10:     "Hygiea",
	minorPlanetBase + 15:     "Eunomia",
	minorPlanetBase + 16:     "Psyche",
	minorPlanetBase + 324:    "Bamberga",
	minorPlanetBase + 2060:   "Chiron",
	minorPlanetBase + 5145:   "Pholus",
	minorPlanetBase + 90377:  "Sedna",
	minorPlanetBase + 136108: "Haumea",
	minorPlanetBase + 136199: "Eris",
	minorPlanetBase + 136472: "Makemake",

	1000000001: "Pluto-Charon Barycenter",
}

// Name returns the conventional name of a body. Identifiers outside the
// table get a placeholder of the form "Body 123" so callers never have to
// branch on whether a name exists.
func Name(id int) string {
	if name, ok := names[id]; ok {
		return name
	}
	return fmt.Sprintf("Body %d", id)
}

// Known reports whether the body has an entry in the name table.
func Known(id int) bool {
	_, ok := names[id]
	return ok
}

// IsMinorPlanet reports whether the identifier lies in the range NAIF
// reserves for numbered asteroids and other minor bodies.
func IsMinorPlanet(id int) bool {
	return id >= minorPlanetBase
}
