package service

import (
	"context"
	"fmt"
	"math/rand"
	"regexp"
	"strconv"
	"strings"
	"time"

	"mealplanner/internal/domain"
)

const (
	generationSampleSize  = 10
	generationMaxAttempts = 5
)

// Serving time per slot, HHMM. The restaurant must be open at this clock
// value for its items to qualify.
var slotServingTime = map[int]int{1: 1000, 2: 1400, 3: 2000}

var slotMealName = map[int]string{1: "breakfast", 2: "lunch", 3: "dinner"}

// The model wraps its answer in role markers; anything else is a miss.
var modelOutputRE = regexp.MustCompile(
	`<\|start_of_role\|>assistant<\|end_of_role\|>\s*(\d+)\s*<\|end_of_text\|>`)

// MenuGenerator picks one menu item per requested (date, slot) pair by
// sampling the candidate pool and asking the language model to choose.
type MenuGenerator struct {
	menu     MenuRepository
	accounts AccountRepository
	llm      TextGenerator

	SampleSize  int
	MaxAttempts int
	rng         *rand.Rand
}

func NewMenuGenerator(menu MenuRepository, accounts AccountRepository, llm TextGenerator) *MenuGenerator {
	return &MenuGenerator{
		menu:        menu,
		accounts:    accounts,
		llm:         llm,
		SampleSize:  generationSampleSize,
		MaxAttempts: generationMaxAttempts,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// UpdateMenu fills the user's saved selection for each requested day and
// slot, skipping pairs that already have an entry. It returns the updated
// selection string; on exhaustion the batch is aborted and nothing is
// persisted.
func (g *MenuGenerator) UpdateMenu(ctx context.Context, userID int, startDate string, days int, slots []int) (string, error) {
	if days < 1 {
		return "", fmt.Errorf("%w: days must be at least 1", ErrValidation)
	}
	for _, slot := range slots {
		if slot < 1 || slot > 3 {
			return "", fmt.Errorf("%w: slot %d is not a meal slot", ErrValidation, slot)
		}
	}
	start, err := time.Parse("2006-01-02", startDate)
	if err != nil {
		return "", fmt.Errorf("%w: start date must be YYYY-MM-DD", ErrValidation)
	}

	user, err := g.accounts.GetUser(userID)
	if err != nil {
		return "", fmt.Errorf("failed to fetch user: %w", err)
	}
	existing := domain.ParseSelection(user.GeneratedMenu)

	candidates, err := g.menu.ListCandidates()
	if err != nil {
		return "", fmt.Errorf("failed to list candidates: %w", err)
	}
	candidates = filterAllergens(candidates, domain.SplitTags(user.Allergens))

	selection := user.GeneratedMenu
	for day := 0; day < days; day++ {
		date := start.AddDate(0, 0, day)
		dateStr := date.Format("2006-01-02")
		weekday := date.Format("Mon")

		for _, slot := range slots {
			if domain.HasSelection(existing, dateStr, slot) {
				continue
			}
			pool := filterClosed(candidates, weekday, slotServingTime[slot])

			itemID, lastOutput, attempts := g.pickItem(ctx, pool, user.Preferences, slot)
			if itemID < 0 {
				return "", &GenerationExhaustedError{
					Date:       dateStr,
					Slot:       slot,
					Attempts:   attempts,
					LastOutput: lastOutput,
				}
			}

			entry := domain.SelectionEntry{Date: dateStr, ItemID: itemID, Slot: slot}
			selection = domain.AppendSelection(selection, entry)
			existing = append(existing, entry)
		}
	}
	return selection, nil
}

// pickItem runs the sample-and-ask loop for a single slot. The sample doubles
// on every retry so later attempts show the model more of the pool. An empty
// pool still burns attempts rather than erroring out immediately.
func (g *MenuGenerator) pickItem(ctx context.Context, pool []domain.Candidate, preferences string, slot int) (int, string, int) {
	var lastOutput string
	for attempt := 0; attempt < g.MaxAttempts; attempt++ {
		if len(pool) == 0 {
			continue
		}
		sample := g.sampleCandidates(pool, g.SampleSize<<attempt)

		output, err := g.llm.Generate(ctx, generationSystemPrompt, buildPrompt(sample, preferences, slot))
		if err != nil {
			lastOutput = err.Error()
			continue
		}
		lastOutput = output

		itemID := parseModelOutput(output)
		if itemID < 0 {
			continue
		}
		for _, c := range sample {
			if c.Item.ID == itemID {
				return itemID, lastOutput, attempt + 1
			}
		}
		// The model picked an ID outside the sample; retry with a wider one.
	}
	return -1, lastOutput, g.MaxAttempts
}

func (g *MenuGenerator) sampleCandidates(pool []domain.Candidate, n int) []domain.Candidate {
	if n >= len(pool) {
		out := make([]domain.Candidate, len(pool))
		copy(out, pool)
		return out
	}
	picked := g.rng.Perm(len(pool))[:n]
	out := make([]domain.Candidate, 0, n)
	for _, i := range picked {
		out = append(out, pool[i])
	}
	return out
}

// parseModelOutput extracts the chosen item ID from the model's wrapped
// reply, or -1 when the reply does not match the expected format.
func parseModelOutput(output string) int {
	m := modelOutputRE.FindStringSubmatch(output)
	if m == nil {
		return -1
	}
	id, err := strconv.Atoi(m[1])
	if err != nil {
		return -1
	}
	return id
}

func filterAllergens(candidates []domain.Candidate, userAllergens []string) []domain.Candidate {
	if len(userAllergens) == 0 {
		return candidates
	}
	banned := make(map[string]bool, len(userAllergens))
	for _, a := range userAllergens {
		banned[strings.ToLower(a)] = true
	}

	out := make([]domain.Candidate, 0, len(candidates))
	for _, c := range candidates {
		safe := true
		for _, tag := range c.Item.AllergenTags() {
			if banned[strings.ToLower(tag)] {
				safe = false
				break
			}
		}
		if safe {
			out = append(out, c)
		}
	}
	return out
}

func filterClosed(candidates []domain.Candidate, weekday string, clock int) []domain.Candidate {
	out := make([]domain.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.RestaurantStatus != "open" {
			continue
		}
		if !c.RestaurantHours.OpenAt(weekday, clock) {
			continue
		}
		out = append(out, c)
	}
	return out
}

const generationSystemPrompt = `You are a meal planning assistant. You will be shown a numbered list of menu items and the diner's preferences. Reply with exactly one item ID from the list, wrapped as: <|start_of_role|>assistant<|end_of_role|>ID<|end_of_text|>`

func buildPrompt(sample []domain.Candidate, preferences string, slot int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Pick the best %s for this diner.\n", slotMealName[slot])
	if preferences != "" {
		fmt.Fprintf(&b, "Diner preferences: %s\n", preferences)
	}
	b.WriteString("Menu items (ID, name, description, price, calories, restaurant):\n")
	for _, c := range sample {
		fmt.Fprintf(&b, "ID %d, %s, %s, $%d.%02d, %d, %s\n",
			c.Item.ID, c.Item.Name, c.Item.Description,
			c.Item.PriceCents/100, c.Item.PriceCents%100,
			c.Item.Calories, c.RestaurantName)
	}
	b.WriteString("Answer with one item ID.")
	return b.String()
}
