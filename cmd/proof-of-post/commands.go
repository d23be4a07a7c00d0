package main

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	"github.com/bonsol-collective/proof-of-post/pkg/logger"
	"github.com/bonsol-collective/proof-of-post/src/api"
	"github.com/bonsol-collective/proof-of-post/src/program"
	"github.com/bonsol-collective/proof-of-post/src/queues"
)

func newCreateConfigCmd() *cobra.Command {
	var (
		seed        string
		keywords    []string
		reward      uint64
		maxClaimers uint64
	)

	cmd := &cobra.Command{
		Use:   "create-config",
		Short: "Create a campaign config owned by the payer",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, client, err := newClient()
			if err != nil {
				return err
			}
			sig, err := client.CreateConfig(cmd.Context(), seed, keywords, reward, maxClaimers)
			if err != nil {
				return err
			}
			fmt.Println(sig)
			return nil
		},
	}

	cmd.Flags().StringVar(&seed, "seed", "", "campaign seed string (immutable)")
	cmd.Flags().StringSliceVar(&keywords, "keyword", nil, "keyword the post must contain (repeatable)")
	cmd.Flags().Uint64Var(&reward, "reward", 0, "reward per claim, in lamports")
	cmd.Flags().Uint64Var(&maxClaimers, "max-claimers", 0, "cap on successful claims")
	_ = cmd.MarkFlagRequired("seed")

	return cmd
}

func newUpdateConfigCmd() *cobra.Command {
	var (
		seed        string
		active      bool
		maxClaimers uint64
		reward      uint64
	)

	cmd := &cobra.Command{
		Use:   "update-config",
		Short: "Patch mutable fields of a campaign config",
		Long: "Only flags you pass are changed; the rest ride as the program's " +
			"\"unchanged\" sentinel. --active=false is an explicit update.",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, client, err := newClient()
			if err != nil {
				return err
			}

			var patch program.ConfigPatch
			if cmd.Flags().Changed("active") {
				patch.Active = program.SetBool(active)
			}
			if cmd.Flags().Changed("max-claimers") {
				patch.MaxClaimers = program.SetU64(maxClaimers)
			}
			if cmd.Flags().Changed("reward") {
				patch.RewardAmount = program.SetU64(reward)
			}
			if patch.IsEmpty() {
				logger.Default().Warnf("No fields set; submitting a no-op update for seed %q", seed)
			}

			sig, err := client.UpdateConfig(cmd.Context(), seed, patch)
			if err != nil {
				return err
			}
			fmt.Println(sig)
			return nil
		},
	}

	cmd.Flags().StringVar(&seed, "seed", "", "campaign seed string")
	cmd.Flags().BoolVar(&active, "active", false, "whether the campaign accepts new verifications")
	cmd.Flags().Uint64Var(&maxClaimers, "max-claimers", 0, "cap on successful claims")
	cmd.Flags().Uint64Var(&reward, "reward", 0, "reward per claim, in lamports")
	_ = cmd.MarkFlagRequired("seed")

	return cmd
}

func newReadConfigCmd() *cobra.Command {
	var (
		seed    string
		creator string
	)

	cmd := &cobra.Command{
		Use:   "read-config",
		Short: "Fetch and print a campaign config",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, client, err := newClient()
			if err != nil {
				return err
			}

			owner := cfg.Keys.PayerPublicKey
			if creator != "" {
				owner, err = solana.PublicKeyFromBase58(creator)
				if err != nil {
					return fmt.Errorf("invalid creator %q: %w", creator, err)
				}
			}

			out, err := client.ReadConfig(cmd.Context(), owner, seed)
			if err != nil {
				return err
			}

			fmt.Printf("creator:        %s\n", out.Creator)
			fmt.Printf("seed:           %s\n", out.Seeds)
			fmt.Printf("keywords:       %v\n", out.Keywords)
			fmt.Printf("reward:         %d\n", out.RewardAmount)
			fmt.Printf("claimers:       %d / %d\n", out.ClaimersCount, out.MaxClaimers)
			fmt.Printf("active:         %t\n", out.Active)
			fmt.Printf("created (slot): %d\n", out.CreatedSlot)
			return nil
		},
	}

	cmd.Flags().StringVar(&seed, "seed", "", "campaign seed string")
	cmd.Flags().StringVar(&creator, "creator", "", "campaign creator (defaults to the payer)")
	_ = cmd.MarkFlagRequired("seed")

	return cmd
}

func newVerifyCmd() *cobra.Command {
	var (
		campaign string
		postRef  string
		tip      uint64
	)

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Submit a post for asynchronous verification against a campaign",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, client, err := newClient()
			if err != nil {
				return err
			}

			campaignKey, err := solana.PublicKeyFromBase58(campaign)
			if err != nil {
				return fmt.Errorf("invalid campaign %q: %w", campaign, err)
			}

			handle, err := client.VerifyPost(cmd.Context(), campaignKey, postRef, tip)
			if err != nil {
				return err
			}

			fmt.Printf("request id: %s\n", handle.RequestID)
			fmt.Printf("signature:  %s\n", handle.Signature)
			fmt.Printf("log:        %s\n", handle.LogAddress)
			fmt.Printf("execution:  %s\n", handle.ExecutionAddress)
			return nil
		},
	}

	cmd.Flags().StringVar(&campaign, "campaign", "", "campaign config address")
	cmd.Flags().StringVar(&postRef, "post", "", "post reference: bsky.app link, at:// URI, or getPosts URL")
	cmd.Flags().Uint64Var(&tip, "tip", 0, "fee offered to the prover, in lamports")
	_ = cmd.MarkFlagRequired("campaign")
	_ = cmd.MarkFlagRequired("post")

	return cmd
}

func newStatusCmd() *cobra.Command {
	var (
		campaign string
		verifier string
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Poll the verification log for a (verifier, campaign) pair",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, client, err := newClient()
			if err != nil {
				return err
			}

			campaignKey, err := solana.PublicKeyFromBase58(campaign)
			if err != nil {
				return fmt.Errorf("invalid campaign %q: %w", campaign, err)
			}

			who := cfg.Keys.PayerPublicKey
			if verifier != "" {
				who, err = solana.PublicKeyFromBase58(verifier)
				if err != nil {
					return fmt.Errorf("invalid verifier %q: %w", verifier, err)
				}
			}

			status, err := client.VerificationStatusFor(cmd.Context(), who, campaignKey)
			if err != nil {
				return err
			}

			fmt.Println(status)
			return nil
		},
	}

	cmd.Flags().StringVar(&campaign, "campaign", "", "campaign config address")
	cmd.Flags().StringVar(&verifier, "verifier", "", "verifier address (defaults to the payer)")
	_ = cmd.MarkFlagRequired("campaign")

	return cmd
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the verification job worker and the status API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, client, err := newClient()
			if err != nil {
				return err
			}
			log := logger.Default()

			conn, err := queues.Connect(cfg.AmqpURL)
			if err != nil {
				return fmt.Errorf("connecting to RabbitMQ: %w", err)
			}
			defer conn.Close()

			ch, err := conn.Channel()
			if err != nil {
				return fmt.Errorf("opening channel: %w", err)
			}
			defer ch.Close()

			if err := queues.SetupVerificationQueues(ch); err != nil {
				return fmt.Errorf("declaring queues: %w", err)
			}

			go func() {
				if err := queues.HandleVerifyJobs(cmd.Context(), client, ch); err != nil {
					log.Errorf(err, "Verification worker stopped")
				}
			}()

			server := api.NewServer(cfg, client)
			log.Infof("Status API listening on %s", cfg.APIAddr)
			return server.Router().Run(cfg.APIAddr)
		},
	}

	return cmd
}
