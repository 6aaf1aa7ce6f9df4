package scorer

import (
	"fmt"
	"strings"

	"travelaigent.app/agent/core/config"
	"travelaigent.app/agent/internal/model"
	"travelaigent.app/agent/internal/query"
)

const systemPrompt = `You are a travel deal analyst for one specific family. You evaluate
flight and package deals against their standing preferences and budget.

Score each deal from 1 (poor value, wrong fit) to 10 (exceptional value,
perfect fit). Be critical: most deals are unremarkable and score 4-6.
Reserve 8+ for genuinely strong prices on dates and destinations the
family actually asked for.

Respond with a single JSON object matching the requested schema. No
markdown, no commentary outside the JSON.`

func buildUserPrompt(family config.FamilyProfile, brief model.Brief, travelers model.Travelers, candidate model.Candidate) string {
	var b strings.Builder

	b.WriteString("FAMILY PROFILE\n")
	fmt.Fprintf(&b, "- Home base: %s (airports %s)\n", family.BaseLocation, strings.Join(family.HomeAirports, ", "))
	fmt.Fprintf(&b, "- Travelling party: %d adults, %d children", travelers.Adults, travelers.Children)
	if len(family.ChildrenAges) > 0 {
		ages := make([]string, len(family.ChildrenAges))
		for i, age := range family.ChildrenAges {
			ages[i] = fmt.Sprintf("%d", age)
		}
		fmt.Fprintf(&b, " (children aged %s)", strings.Join(ages, ", "))
	}
	b.WriteString("\n\n")

	b.WriteString("WHAT THEY ASKED FOR\n")
	fmt.Fprintf(&b, "- Destinations: %s\n", brief.Destinations)
	fmt.Fprintf(&b, "- Dates: %s\n", brief.TravelDates)
	if brief.BudgetMax > 0 {
		fmt.Fprintf(&b, "- Budget ceiling: %.0f %s total\n", brief.BudgetMax, candidate.Currency)
	}
	if brief.AIInstructions != "" {
		fmt.Fprintf(&b, "- Instructions: %s\n", brief.AIInstructions)
	}
	b.WriteString("\n")

	b.WriteString("THE DEAL\n")
	if candidate.Kind == model.DealKindPackage {
		fmt.Fprintf(&b, "- Package to %s (%s)\n", query.DestinationName(candidate.Destination), candidate.Destination)
		fmt.Fprintf(&b, "- Hotel: %s, %d nights\n", candidate.HotelName, candidate.Nights)
		if candidate.Savings > 0 {
			fmt.Fprintf(&b, "- Estimated bundle savings: %.2f %s\n", candidate.Savings, candidate.Currency)
		}
	} else {
		fmt.Fprintf(&b, "- Flight only to %s (%s)\n", query.DestinationName(candidate.Destination), candidate.Destination)
	}
	fmt.Fprintf(&b, "- Route: %s -> %s", candidate.Origin, candidate.Destination)
	if candidate.Airline != "" {
		fmt.Fprintf(&b, " on %s", candidate.Airline)
	}
	if candidate.Stops == 0 {
		b.WriteString(", direct")
	} else {
		fmt.Fprintf(&b, ", %d stop(s)", candidate.Stops)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "- Outbound: %s %s\n", candidate.DepartureDate, candidate.DepartureTime)
	if candidate.ReturnDate != "" {
		fmt.Fprintf(&b, "- Return: %s %s\n", candidate.ReturnDate, candidate.ReturnTime)
	}
	fmt.Fprintf(&b, "- Total price: %.2f %s", candidate.TotalPrice, candidate.Currency)
	if total := travelers.Total(); total > 0 {
		fmt.Fprintf(&b, " (%.2f per person)", candidate.TotalPrice/float64(total))
	}
	b.WriteString("\n")

	return b.String()
}
