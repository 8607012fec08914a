package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/shopspring/decimal"

	"shopbot/internal/models"
	"shopbot/internal/store"
)

func (b *Bot) commandTable() []*Command {
	return []*Command{
		{Name: "register", Usage: "register <name> [email]", Run: b.cmdRegister},
		{Name: "myinfo", Usage: "myinfo", Run: b.cmdMyInfo},
		{Name: "buy", Aliases: []string{"purchase"}, Usage: "buy <product>", Run: b.cmdBuy},
		{Name: "products", Usage: "products", Run: b.cmdProducts},
		{Name: "ltc", Usage: "ltc", Run: b.cmdLtcRate},
		{Name: "addproduct", Usage: "addproduct <name> <price> <description>", AdminOnly: true, Run: b.cmdAddProduct},
		{Name: "delproduct", Usage: "delproduct <name>", AdminOnly: true, Run: b.cmdDelProduct},
		{Name: "editprice", Usage: "editprice <name> <price>", AdminOnly: true, Run: b.cmdEditPrice},
		{Name: "stock", Usage: "stock <name> <amount>", AdminOnly: true, Run: b.cmdEditStock},
		{
			Name:      "pending_orders",
			Aliases:   []string{"pendingdelivery", "pdorders", "pdo", "deliverypending"},
			Usage:     "pending_orders",
			AdminOnly: true,
			Run:       b.cmdPendingOrders,
		},
		{
			Name:      "delete_pending_order",
			Aliases:   []string{"delpending", "dpo", "deletependingorder", "delete_po"},
			Usage:     "delete_pending_order <order_id>",
			AdminOnly: true,
			Run:       b.cmdDeletePendingOrder,
		},
		{Name: "checkpayment", Usage: "checkpayment <payment_id>", AdminOnly: true, Run: b.cmdCheckPayment},
		{Name: "delivery", Usage: "delivery <user> <item> <details>", AdminOnly: true, Run: b.cmdDelivery},
	}
}

func (b *Bot) cmdRegister(ctx context.Context, m *discordgo.MessageCreate, args []string) error {
	if len(args) < 1 {
		b.reply(m, "⚠️ Please provide your name.\n**Usage:** `"+b.cfg.Prefix+"register <name> [email]`")
		return nil
	}
	name := args[0]
	email := ""
	if len(args) > 1 {
		email = args[1]
	}

	customer, err := b.store.RegisterCustomer(m.Author.ID, m.Author.String(), name, email)
	switch {
	case errors.Is(err, store.ErrAlreadyRegistered):
		existing, getErr := b.store.GetCustomer(m.Author.ID)
		if getErr != nil {
			return getErr
		}
		b.reply(m, fmt.Sprintf("🪪 You're already registered as **%s** (joined `%s`). You can only register once.", existing.Name, existing.Joined))
		return nil
	case errors.Is(err, store.ErrInvalidEmail):
		b.reply(m, "❌ That email doesn't look valid. **Example:** `example@gmail.com`")
		return nil
	case err != nil:
		return err
	}

	b.sendEmbed(m.ChannelID, &discordgo.MessageEmbed{
		Title:       "✅ Registration Successful",
		Description: fmt.Sprintf("Welcome, **%s**! You're now registered.", customer.Name),
		Color:       0x57f287,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "📧 Email", Value: customer.Email, Inline: true},
			{Name: "📅 Joined", Value: customer.Joined, Inline: true},
		},
	})
	return nil
}

func (b *Bot) cmdMyInfo(ctx context.Context, m *discordgo.MessageCreate, args []string) error {
	customer, err := b.store.GetCustomer(m.Author.ID)
	if errors.Is(err, store.ErrCustomerNotFound) {
		b.reply(m, "❌ You're not registered yet! Use `"+b.cfg.Prefix+"register <name> [email]` to register.")
		return nil
	}
	if err != nil {
		return err
	}

	b.sendEmbed(m.ChannelID, &discordgo.MessageEmbed{
		Title: "👤 Your Registration Info",
		Color: 0x5865f2,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "🪪 Name", Value: customer.Name, Inline: true},
			{Name: "📧 Email", Value: customer.Email, Inline: true},
			{Name: "📅 Joined", Value: customer.Joined},
			{Name: "🆔 Discord ID", Value: string(customer.DiscordID)},
		},
	})
	return nil
}

func (b *Bot) cmdBuy(ctx context.Context, m *discordgo.MessageCreate, args []string) error {
	if len(args) == 0 {
		b.reply(m, "🛒 Please specify the item you want to buy.\nExample: `"+b.cfg.Prefix+"buy Nitro`")
		return nil
	}
	productName := strings.Join(args, " ")

	purchase, err := b.service.BeginPurchase(ctx, m.Author.ID, m.Author.String(), productName)
	switch {
	case errors.Is(err, store.ErrCustomerNotFound):
		b.reply(m, "⚠️ **Registration required.** Before making a purchase, register with `"+
			b.cfg.Prefix+"register <name> [email]`. Email is optional, but with one your "+
			"purchase is delivered to both DM and email.")
		return nil
	case errors.Is(err, store.ErrProductNotFound):
		b.reply(m, "❌ Product not found. Use `"+b.cfg.Prefix+"products` to view available items.")
		return nil
	case errors.Is(err, store.ErrOutOfStock):
		b.reply(m, fmt.Sprintf("⚠️ `%s` is out of stock.", productName))
		return nil
	case err != nil:
		return err
	}

	payment := purchase.Payment
	b.sendEmbed(m.ChannelID, &discordgo.MessageEmbed{
		Title:       "💰 Litecoin Payment Request",
		Description: "Please complete your LTC payment below 👇",
		Color:       0xf1c40f,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "🧾 Order ID", Value: fmt.Sprintf("`%s`", purchase.Order.OrderID), Inline: true},
			{Name: "💵 USD Amount", Value: fmt.Sprintf("`%s`", payment.AmountUSD.String()), Inline: true},
			{Name: "🪙 LTC Amount", Value: fmt.Sprintf("`%s`", payment.LtcAmount.String()), Inline: true},
			{Name: "🏦 Pay to Address", Value: fmt.Sprintf("```%s```", payment.Address)},
			{Name: "🆔 Payment ID", Value: fmt.Sprintf("```%s```", payment.PaymentID)},
		},
	})
	b.send(m.ChannelID, "⌛ Waiting for Litecoin payment confirmation (this may take a few minutes)...")

	status, err := b.service.AwaitPayment(ctx, purchase)
	if err != nil {
		if ctx.Err() != nil || errors.Is(err, context.Canceled) {
			return nil // shutdown or order deletion stopped the poll
		}
		return err
	}

	switch status {
	case models.PaymentFinished:
		b.send(m.ChannelID, fmt.Sprintf("✅ Order `%s` completed! Check your DMs.", purchase.Order.OrderID))
		b.dm(m.Author.ID, &discordgo.MessageEmbed{
			Title:       "✅ Payment Confirmed!",
			Description: "Thank you for your purchase! ❤️\n\n🕓 *Your order will be delivered very soon.*",
			Color:       0x57f287,
			Fields: []*discordgo.MessageEmbedField{
				{Name: "🧾 Order ID", Value: fmt.Sprintf("`%s`", purchase.Order.OrderID), Inline: true},
				{Name: "📦 Product", Value: fmt.Sprintf("`%s`", purchase.Order.Item), Inline: true},
				{Name: "💰 Amount Paid", Value: fmt.Sprintf("`%s USD`", payment.AmountUSD.String()), Inline: true},
			},
		})
	case models.PaymentFailed:
		b.send(m.ChannelID, "❌ Payment failed. Order canceled.")
	case models.PaymentTimeout:
		b.send(m.ChannelID, "⌛ Payment verification timed out. If you paid, contact support.")
	}
	return nil
}

func (b *Bot) cmdProducts(ctx context.Context, m *discordgo.MessageCreate, args []string) error {
	products, err := b.store.ListProducts()
	if err != nil {
		return err
	}
	if len(products) == 0 {
		b.send(m.ChannelID, "🛒 The shop is empty right now. Check back later!")
		return nil
	}

	embed := &discordgo.MessageEmbed{
		Title: "🛍️ Available Products",
		Color: 0xf1c40f,
	}
	for name, product := range products {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: name,
			Value: fmt.Sprintf("💰 `$%s` — 📦 stock: `%d`\n%s",
				product.Price.String(), product.Stock, product.Description),
		})
	}
	b.sendEmbed(m.ChannelID, embed)
	return nil
}

func (b *Bot) cmdLtcRate(ctx context.Context, m *discordgo.MessageCreate, args []string) error {
	rates, err := b.rates.SimplePrice(ctx, "litecoin", "usd", "inr")
	if err != nil {
		b.send(m.ChannelID, "❌ Could not fetch the current LTC rate. Try again later.")
		return err
	}
	b.send(m.ChannelID, fmt.Sprintf("🪙 **LTC rate:** $%s USD / ₹%s INR", rates["usd"].String(), rates["inr"].String()))
	return nil
}

func (b *Bot) cmdAddProduct(ctx context.Context, m *discordgo.MessageCreate, args []string) error {
	if len(args) < 3 {
		b.reply(m, "⚠️ Usage: `"+b.cfg.Prefix+"addproduct <name> <price> <description>`")
		return nil
	}
	price, err := decimal.NewFromString(args[1])
	if err != nil || price.IsNegative() {
		b.reply(m, "⚠️ Price must be a non-negative number.")
		return nil
	}
	name := args[0]
	description := strings.Join(args[2:], " ")

	if _, err := b.store.AddProduct(name, price, description, 0); err != nil {
		return err
	}
	b.send(m.ChannelID, fmt.Sprintf("✅ Added **%s** at `$%s`. Set stock with `%sstock %s <amount>`.", name, price.String(), b.cfg.Prefix, name))
	return nil
}

func (b *Bot) cmdDelProduct(ctx context.Context, m *discordgo.MessageCreate, args []string) error {
	if len(args) == 0 {
		b.reply(m, "⚠️ Usage: `"+b.cfg.Prefix+"delproduct <name>`")
		return nil
	}
	name := strings.Join(args, " ")

	removed, err := b.store.RemoveProduct(name)
	if err != nil {
		return err
	}
	if !removed {
		b.send(m.ChannelID, fmt.Sprintf("❌ No product named `%s`.", name))
		return nil
	}
	b.send(m.ChannelID, fmt.Sprintf("🗑️ Removed **%s** from the shop.", name))
	return nil
}

func (b *Bot) cmdEditPrice(ctx context.Context, m *discordgo.MessageCreate, args []string) error {
	if len(args) < 2 {
		b.reply(m, "⚠️ Usage: `"+b.cfg.Prefix+"editprice <name> <price>`")
		return nil
	}
	price, err := decimal.NewFromString(args[1])
	if err != nil || price.IsNegative() {
		b.reply(m, "⚠️ Price must be a non-negative number.")
		return nil
	}

	err = b.store.SetPrice(args[0], price)
	if errors.Is(err, store.ErrProductNotFound) {
		b.send(m.ChannelID, fmt.Sprintf("❌ No product named `%s`.", args[0]))
		return nil
	}
	if err != nil {
		return err
	}
	b.send(m.ChannelID, fmt.Sprintf("✅ **%s** now costs `$%s`.", args[0], price.String()))
	return nil
}

func (b *Bot) cmdEditStock(ctx context.Context, m *discordgo.MessageCreate, args []string) error {
	if len(args) < 2 {
		b.reply(m, "⚠️ Usage: `"+b.cfg.Prefix+"stock <name> <amount>`")
		return nil
	}
	amount, err := strconv.Atoi(args[1])
	if err != nil || amount < 0 {
		b.reply(m, "⚠️ Stock must be a non-negative integer.")
		return nil
	}

	err = b.store.SetStock(args[0], amount)
	if errors.Is(err, store.ErrProductNotFound) {
		b.send(m.ChannelID, fmt.Sprintf("❌ No product named `%s`.", args[0]))
		return nil
	}
	if err != nil {
		return err
	}
	b.send(m.ChannelID, fmt.Sprintf("✅ **%s** stock set to `%d`.", args[0], amount))
	return nil
}

func (b *Bot) cmdPendingOrders(ctx context.Context, m *discordgo.MessageCreate, args []string) error {
	pending, err := b.store.ListPendingDelivery()
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		b.send(m.ChannelID, "✅ There are no pending deliveries right now — everything's delivered!")
		return nil
	}

	embed := &discordgo.MessageEmbed{
		Title:       "📦 Pending Deliveries",
		Description: "Orders that have been **paid** but not **delivered** yet 🚚",
		Color:       0xf1c40f,
	}
	for id, order := range pending {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: fmt.Sprintf("🆔 Order %s — %s", id, order.Status),
			Value: fmt.Sprintf("👤 <@%s> (`%s`)\n🎁 `%s` — 💰 `$%s`\n📅 `%s`",
				order.UserID, order.UserName, order.Item, order.Amount.String(), order.Timestamp),
		})
	}
	b.sendEmbed(m.ChannelID, embed)
	return nil
}

func (b *Bot) cmdDeletePendingOrder(ctx context.Context, m *discordgo.MessageCreate, args []string) error {
	if len(args) == 0 {
		b.reply(m, "⚠️ Usage: `"+b.cfg.Prefix+"delete_pending_order <order_id>`")
		return nil
	}

	removed, err := b.service.DeletePendingOrder(args[0])
	if err != nil {
		return err
	}
	if !removed {
		b.send(m.ChannelID, fmt.Sprintf("❌ No pending order with id `%s`.", args[0]))
		return nil
	}
	b.send(m.ChannelID, fmt.Sprintf("🗑️ Order `%s` deleted.", args[0]))
	return nil
}

func (b *Bot) cmdCheckPayment(ctx context.Context, m *discordgo.MessageCreate, args []string) error {
	if len(args) == 0 {
		b.reply(m, "⚠️ Usage: `"+b.cfg.Prefix+"checkpayment <payment_id>`")
		return nil
	}

	payment, err := b.store.GetPayment(args[0])
	if errors.Is(err, store.ErrPaymentNotFound) {
		b.send(m.ChannelID, "❌ No payment found with that ID.")
		return nil
	}
	if err != nil {
		return err
	}

	updated := "N/A"
	if payment.UpdatedAt != nil {
		updated = *payment.UpdatedAt
	}
	b.sendEmbed(m.ChannelID, &discordgo.MessageEmbed{
		Title: "📄 Payment Details",
		Color: 0x5865f2,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "👤 User ID", Value: fmt.Sprintf("`%s`", payment.UserID)},
			{Name: "💵 USD Amount", Value: fmt.Sprintf("`%s`", payment.AmountUSD.String()), Inline: true},
			{Name: "🪙 LTC Amount", Value: fmt.Sprintf("`%s`", payment.LtcAmount.String()), Inline: true},
			{Name: "🏦 Address", Value: fmt.Sprintf("```%s```", payment.Address)},
			{Name: "📦 Status", Value: fmt.Sprintf("`%s`", payment.Status), Inline: true},
			{Name: "🕒 Created", Value: fmt.Sprintf("`%s`", payment.CreatedAt), Inline: true},
			{Name: "🔁 Updated", Value: fmt.Sprintf("`%s`", updated), Inline: true},
		},
	})
	return nil
}

// cmdDelivery is the manual escape hatch for off-platform transactions: it
// DMs the delivery details straight to the user and touches no ledger state.
func (b *Bot) cmdDelivery(ctx context.Context, m *discordgo.MessageCreate, args []string) error {
	if len(args) < 3 {
		b.reply(m, "⚠️ Usage: `"+b.cfg.Prefix+"delivery <user> <item_name> <details>`")
		return nil
	}

	userID := parseUserArg(args[0])
	item := args[1]
	details := strings.Join(args[2:], " ")

	channel, err := b.session.UserChannelCreate(userID)
	if err != nil {
		b.send(m.ChannelID, fmt.Sprintf("⚠️ Could not DM <@%s>. They might have DMs disabled.", userID))
		return nil
	}

	b.sendEmbed(channel.ID, &discordgo.MessageEmbed{
		Title:       "📦 Your Order Has Been Delivered!",
		Description: "Thank you for shopping with us ❤️",
		Color:       0x57f287,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "📦 Product", Value: fmt.Sprintf("`%s`", item), Inline: true},
			{Name: "📅 Date", Value: fmt.Sprintf("`%s`", models.Stamp(time.Now())), Inline: true},
			{Name: "🎁 Delivery Details", Value: fmt.Sprintf("```%s```", details)},
		},
	})
	b.send(m.ChannelID, fmt.Sprintf("✅ Successfully delivered **%s** to <@%s>.", item, userID))
	return nil
}

// parseUserArg accepts a raw discord id or a mention like <@123> / <@!123>.
func parseUserArg(arg string) string {
	arg = strings.TrimPrefix(arg, "<@")
	arg = strings.TrimPrefix(arg, "!")
	return strings.TrimSuffix(arg, ">")
}
