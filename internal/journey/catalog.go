package journey

import "github.com/campusquest/api/internal/campus"

// DefaultCatalog is the fixed set of journey quests shared by all
// players. Stop 0 is the public map anchor; stops 1 and 2 are the
// proximity-gated check-ins.
func DefaultCatalog() []campus.JourneyQuest {
	return []campus.JourneyQuest{
		{
			ID:     "trail-of-knowledge",
			Name:   "Trail of Knowledge",
			Emoji:  "📚",
			Reward: 150,
			Stops: []campus.Stop{
				{Lat: 49.41954, Lng: 8.67062, Radius: 50, RiddleText: "Begin where every semester begins: the hall that welcomes all first-years."},
				{Lat: 49.41782, Lng: 8.67491, Radius: 45, RiddleText: "Seek the house of a million pages, where silence is the loudest rule."},
				{Lat: 49.41633, Lng: 8.67889, Radius: 45, RiddleText: "End at the oldest lecture hall, where chalk has outlived every blackboard."},
			},
		},
		{
			ID:     "founders-walk",
			Name:   "Founders' Walk",
			Emoji:  "🏛️",
			Reward: 120,
			Stops: []campus.Stop{
				{Lat: 49.42105, Lng: 8.66780, Radius: 50, RiddleText: "Start at the gate bearing the founding year in iron letters."},
				{Lat: 49.42244, Lng: 8.66412, Radius: 40, RiddleText: "Find the statue that faces the sunrise and never the lecture halls."},
				{Lat: 49.42399, Lng: 8.66095, Radius: 40, RiddleText: "Finish beneath the clock tower that has been five minutes fast for a century."},
			},
		},
		{
			ID:     "campus-legends",
			Name:   "Campus Legends",
			Emoji:  "🦉",
			Reward: 200,
			Stops: []campus.Stop{
				{Lat: 49.41510, Lng: 8.66901, Radius: 60, RiddleText: "Legends start at the fountain students touch before every exam."},
				{Lat: 49.41366, Lng: 8.67234, Radius: 35, RiddleText: "Climb to where the city looks smallest and the owls nest in stone."},
				{Lat: 49.41205, Lng: 8.67577, Radius: 35, RiddleText: "The last legend sleeps under the lone oak on the south lawn."},
			},
		},
	}
}
