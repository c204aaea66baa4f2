package main

import (
	"flag"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/mauv0809/squadroll/internal/database"
	"github.com/mauv0809/squadroll/internal/ratings"
	"github.com/mauv0809/squadroll/internal/riot"
	"github.com/mauv0809/squadroll/internal/snapshot"
	"github.com/mauv0809/squadroll/internal/teams"
)

// Simplified config loading for the script
func loadConfig() map[string]string {
	err := godotenv.Load()
	if err != nil {
		log.Warn("No .env file found, reading from environment variables")
	}

	config := map[string]string{}
	if value, ok := os.LookupEnv("DB_NAME"); ok {
		config["DB_NAME"] = value
	} else {
		log.Fatalf("Error: Required environment variable %s is not set.", "DB_NAME")
	}
	for _, key := range []string{"TURSO_PRIMARY_URL", "TURSO_AUTH_TOKEN"} {
		config[key] = os.Getenv(key)
	}
	return config
}

func main() {
	players := flag.Int("players", 200, "number of users to rate")
	linked := flag.Float64("linked", 0.4, "share of users with a linked League account and rank")
	guildID := flag.Int64("guild", 0, "also store a team snapshot for this guild")
	seed := flag.Uint64("seed", 0, "random seed, 0 picks one from the clock")
	flag.Parse()

	log.Info("Starting database seeder...")
	cfg := loadConfig()

	db, teardown, err := database.InitDB(cfg["DB_NAME"], cfg["TURSO_PRIMARY_URL"], cfg["TURSO_AUTH_TOKEN"])
	if err != nil {
		log.Fatalf("Failed to open database: %s", err)
	}
	defer teardown()
	log.Info("Successfully connected to the database.")

	if *seed == 0 {
		*seed = uint64(time.Now().UnixNano())
	}
	faker := gofakeit.New(*seed)
	store := ratings.New(db)
	regions := riot.Regions()

	startTime := time.Now()
	ids := make([]int64, 0, *players)
	var ranked int
	for i := 0; i < *players; i++ {
		// Snowflake-sized ids keep mentions realistic.
		id := int64(faker.IntRange(100000000000000000, 999999999999999999))
		ids = append(ids, id)

		if faker.Float64Range(0, 1) >= *linked {
			if err := store.SetRating(id, faker.Float64Range(800, 2600)); err != nil {
				log.Fatalf("Failed to store rating for %d: %s", id, err)
			}
			continue
		}

		link := ratings.Link{
			UserID:       id,
			SummonerName: faker.Gamertag() + "#" + faker.Numerify("####"),
			Region:       faker.RandomString(regions),
		}
		if err := store.SetLink(link); err != nil {
			log.Fatalf("Failed to store link for %d: %s", id, err)
		}
		tier, division, err := ratings.NormalizeRank(faker.RandomString(ratings.Tiers), faker.RandomString(ratings.Divisions))
		if err != nil {
			log.Warn("Skipping generated rank", "error", err)
			continue
		}
		rank := ratings.Rank{
			UserID:    id,
			Source:    ratings.SourceOffline,
			Tier:      tier,
			Division:  division,
			LP:        faker.IntRange(0, 100),
			UpdatedAt: time.Now(),
		}
		if _, err := store.ApplyRank(rank); err != nil {
			log.Fatalf("Failed to store rank for %d: %s", id, err)
		}
		ranked++
	}
	log.Info("Seeded ratings", "players", len(ids), "ranked", ranked, "duration", time.Since(startTime))

	if *guildID == 0 || len(ids) < 2 {
		return
	}
	size := min(len(ids), 10)
	scores, err := store.GetRatings(ids[:size])
	if err != nil {
		log.Fatalf("Failed to read seeded ratings: %s", err)
	}
	roster := make([]teams.Player, size)
	for i, id := range ids[:size] {
		roster[i] = teams.Player{ID: id, Rating: scores[id]}
	}
	partitioner := teams.NewPartitioner(teams.NewRand(*seed))
	result := partitioner.Partition(teams.Request{
		Players: roster,
		Sizes:   teams.EvenSizes(size, 2),
		Mode:    teams.ModeBalanced,
	})
	snap := snapshot.NewSnapshot(*guildID, ids[0], result.Assignment, string(teams.ModeBalanced))
	if err := snapshot.New(db).Set(snap); err != nil {
		log.Fatalf("Failed to store snapshot: %s", err)
	}
	log.Info("Stored team snapshot", "guild", *guildID, "players", size)
}
