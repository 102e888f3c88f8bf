package roadmap

// DefaultTemplate is the starter plan seeded into every new project. Couples
// reshape it from the setup screen; it reconciles like any submitted
// structure.
func DefaultTemplate() []PhaseInput {
	template := []struct {
		title string
		tasks []string
	}{
		{
			title: "Setting the Coordinates",
			tasks: []string{"Define the Budget", "The Guest List Draft", "Pick a Date/Season", "Engagement Party"},
		},
		{
			title: "Building the Scenery",
			tasks: []string{"The Venue Hunt", "The Planner", "The Photographer/Videographer", "The Caterer"},
		},
		{
			title: "The Look & Feel",
			tasks: []string{"The Dress & Attire", "Decor & Florals", "The Website"},
		},
		{
			title: "The Entertainment & Details",
			tasks: []string{"Music", "The Officiant", "The Cake/Dessert", "Transportation"},
		},
		{
			title: "The Final Stretch",
			tasks: []string{"Invitations", "Rings", "Marriage License", "Rehearsal Dinner"},
		},
		{
			title: "The Destination",
			tasks: []string{"The Wedding Day", "Honeymoon"},
		},
	}

	phases := make([]PhaseInput, 0, len(template))
	for _, entry := range template {
		phase := PhaseInput{Title: entry.title}
		for _, task := range entry.tasks {
			phase.Tasks = append(phase.Tasks, TaskInput{Title: task})
		}
		phases = append(phases, phase)
	}
	return phases
}
