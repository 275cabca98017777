// Command seed populates the development database with demo data.
package main

import (
	"flag"
	"log"

	"pulse/internal/bootstrap"
	"pulse/internal/config"
	"pulse/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 20, "Number of users to create")
	numPosts := flag.Int("posts", 200, "Number of posts to create")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	dryRun := flag.Bool("dry-run", false, "Build entities without writing to the database")
	flag.Parse()

	log.Println("🌱 Database Seeder")
	log.Println("==================")
	log.Printf("Target: %d users, %d posts, clean=%v\n", *numUsers, *numPosts, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	_, _, err = bootstrap.InitRuntime(cfg, bootstrap.Options{
		SeedDemoData: true,
		SeedOptions: seed.Options{
			NumUsers:    *numUsers,
			NumPosts:    *numPosts,
			ShouldClean: *shouldClean,
			DryRun:      *dryRun,
		},
	})
	if err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Println("✨ All done! Your database is now populated with demo data.")
}
