package spot

import "github.com/neexbeast/spotfinder/internal/ranking"

type catalogEntry struct {
	id, name, building, floor, address string
	kind                               Kind
	lat, lng                           float64
	occupancy                          float64
	noise                              ranking.NoiseCategory
	seats                              int
}

// Baseline occupancy and noise readings; live values replace them on re-seed.
var campus = []catalogEntry{
	{"1", "Thompson Library: 11th Floor", "Thompson Library", "11th Floor", "1858 Neil Avenue Mall, Columbus, OH 43210", KindStudy, 40.0067, -83.0298, 35, ranking.NoiseQuiet, 15},
	{"2", "Thompson Library: 2nd Floor Grand Reading Room", "Thompson Library", "2nd Floor", "1858 Neil Avenue Mall, Columbus, OH 43210", KindStudy, 40.0067, -83.0298, 60, ranking.NoiseQuiet, 30},
	{"3", "18th Avenue Library", "18th Avenue Library", "Main Floor", "175 West 18th Avenue, Columbus, OH 43210", KindStudy, 40.0080, -83.0270, 28, ranking.NoiseSilent, 20},
	{"4", "Smith Lab", "Smith Lab", "1st Floor", "174 W. 18th Avenue, Columbus, OH 43210", KindStudy, 40.0074, -83.0305, 58, ranking.NoiseModerate, 8},
	{"5", "Fontana Lab", "Fontana Lab", "Ground Floor", "116 W. 19th Avenue, Columbus, OH 43210", KindStudy, 40.0088, -83.0292, 40, ranking.NoiseQuiet, 10},
	{"6", "Morrill Tower Study Rooms", "Morrill Tower", "Lower Level", "2009 Millikin Road, Columbus, OH 43210", KindStudy, 40.0005, -83.0207, 75, ranking.NoiseModerate, 5},
	{"7", "Knowlton Hall: Architecture Library", "Knowlton Hall", "Ground Floor", "275 W. Woodruff Avenue, Columbus, OH 43210", KindStudy, 40.0014, -83.0318, 45, ranking.NoiseQuiet, 12},
	{"8", "Music Hall: Timashev Family Music Building", "Timashev Family Music Building", "2nd Floor", "110 Weigel Hall, Columbus, OH 43210", KindStudy, 40.0078, -83.0285, 50, ranking.NoiseQuiet, 9},
	{"9", "Orton Hall: Geology Library", "Orton Hall", "1st Floor", "155 S. Oval Mall, Columbus, OH 43210", KindStudy, 40.0070, -83.0305, 30, ranking.NoiseSilent, 6},
	{"10", "Traditions at Scott", "Scott House", "Main Floor", "1989 College Road, Columbus, OH 43210", KindDining, 40.0095, -83.0245, 85, ranking.NoiseLoud, 20},
	{"11", "Traditions at Kennedy Commons", "Kennedy Commons", "Main Floor", "1520 Neil Avenue, Columbus, OH 43210", KindDining, 40.0078, -83.0230, 70, ranking.NoiseLoud, 25},
	{"12", "Traditions at Morrill", "Morrill Tower", "1st Floor", "2009 Millikin Road, Columbus, OH 43210", KindDining, 40.0005, -83.0207, 65, ranking.NoiseModerate, 18},
	{"13", "Juice at RPAC", "RPAC", "1st Floor", "337 Annie & John Glenn Avenue, Columbus, OH 43210", KindDining, 39.9990, -83.0265, 55, ranking.NoiseModerate, 6},
	{"14", "Berry Cafe", "Thompson Library", "1st Floor", "1753 Neil Avenue, Columbus, OH 43210", KindDining, 40.0060, -83.0310, 80, ranking.NoiseModerate, 4},
	{"15", "Curl Market", "Curl Hall", "Main Floor", "1863 Cannon Drive, Columbus, OH 43210", KindDining, 40.0085, -83.0250, 60, ranking.NoiseModerate, 10},
	{"16", "Connecting Grounds", "Ohio Union", "2nd Floor", "1739 N High Street, Columbus, OH 43210", KindDining, 40.0020, -83.0290, 92, ranking.NoiseLoud, 2},
	{"17", "Woody's Tavern", "Ohio Union", "1st Floor", "1739 N High Street, Columbus, OH 43210", KindDining, 40.0020, -83.0290, 70, ranking.NoiseLoud, 14},
	{"18", "Sloopy's Diner", "Ohio Union", "1st Floor", "1739 N High Street, Columbus, OH 43210", KindDining, 40.0020, -83.0290, 65, ranking.NoiseLoud, 16},
}

// Catalog returns the built-in campus locations used to seed a fresh database.
func Catalog() []Location {
	out := make([]Location, len(campus))
	for i, c := range campus {
		lat, lng := c.lat, c.lng
		occupancy, seats := c.occupancy, c.seats
		out[i] = Location{
			ID:               c.id,
			Name:             c.name,
			Building:         c.building,
			Floor:            c.floor,
			Address:          c.address,
			Kind:             c.kind,
			Latitude:         &lat,
			Longitude:        &lng,
			OccupancyPercent: &occupancy,
			NoiseLevel:       c.noise,
			AvailableSeats:   &seats,
		}
	}
	return out
}
