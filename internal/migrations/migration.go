package migrations

import (
	"log"

	"storefront/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// RunMigrations recreates the schema and seeds default data. Destructive;
// meant for development databases only.
func RunMigrations(db *gorm.DB) error {
	log.Println("Running database migrations...")

	log.Println("Dropping existing tables...")
	err := db.Migrator().DropTable(
		&models.User{},
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
		&models.OrderStatusEntry{},
		&models.RewardTransaction{},
		&models.Referral{},
		&models.Pincode{},
		&models.DeliverySlot{},
		&models.Coupon{},
		&models.SupportTicket{},
		&models.TicketReply{},
		&models.Banner{},
		&models.Offer{},
	)
	if err != nil {
		log.Printf("Warning: Error dropping tables: %v", err)
	}

	log.Println("Creating tables...")
	err = db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
		&models.OrderStatusEntry{},
		&models.RewardTransaction{},
		&models.Referral{},
		&models.Pincode{},
		&models.DeliverySlot{},
		&models.Coupon{},
		&models.SupportTicket{},
		&models.TicketReply{},
		&models.Banner{},
		&models.Offer{},
	)
	if err != nil {
		return err
	}

	if err := createDefaultData(db); err != nil {
		log.Printf("Warning: Failed to create default data: %v", err)
	}

	log.Println("Database migrations completed successfully!")
	return nil
}

// createDefaultData seeds the admin account and a few serviceable pincodes.
func createDefaultData(db *gorm.DB) error {
	log.Println("Creating default data...")

	var existing models.User
	err := db.Where("email = ?", "admin@storefront.example.com").First(&existing).Error
	if err == nil {
		log.Println("Admin user already exists")
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := &models.User{
		Name:         "Store Admin",
		Email:        "admin@storefront.example.com",
		PasswordHash: string(hashed),
		Role:         string(models.RoleAdmin),
		IsActive:     true,
	}
	if err := db.Create(admin).Error; err != nil {
		log.Printf("Warning: Failed to create admin user: %v", err)
	} else {
		log.Println("Admin user created successfully")
		log.Println("Email: admin@storefront.example.com")
		log.Println("Password: admin123")
	}

	log.Println("Creating default pincodes...")

	pincodes := []models.Pincode{
		{
			Code: "400001", City: "Mumbai", State: "Maharashtra",
			IsServiceable: true, CODAvailable: true,
			StandardDays: 3, ExpressDays: 1, ExpressAvailable: true,
			DeliveryCharge: 40, FreeDeliveryThreshold: 500,
			Slots: []models.DeliverySlot{
				{Label: "Morning", StartHour: 9, EndHour: 12, CutoffHour: 10},
				{Label: "Evening", StartHour: 17, EndHour: 20, CutoffHour: 14, Surcharge: 20},
			},
		},
		{
			Code: "560001", City: "Bengaluru", State: "Karnataka",
			IsServiceable: true, CODAvailable: true,
			StandardDays: 4,
			DeliveryCharge: 50, FreeDeliveryThreshold: 750,
			Slots: []models.DeliverySlot{
				{Label: "Morning", StartHour: 9, EndHour: 12, CutoffHour: 11},
			},
		},
		{
			Code: "190001", City: "Srinagar", State: "Jammu and Kashmir",
			IsServiceable: false,
		},
	}
	for i := range pincodes {
		if err := db.Create(&pincodes[i]).Error; err != nil {
			log.Printf("Warning: Failed to create pincode %s: %v", pincodes[i].Code, err)
		}
	}

	log.Println("Default data created successfully!")
	return nil
}
