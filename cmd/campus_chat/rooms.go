package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"campus_chat/internal/config"
	"campus_chat/internal/dao"
	"campus_chat/internal/infrastructure/mq"
	"campus_chat/internal/service"
	"campus_chat/internal/thread"

	"github.com/spf13/cobra"
)

var (
	resolveParams   string
	resolveSource   string
	resolveProposed string
)

var roomsCmd = &cobra.Command{
	Use:   "rooms",
	Short: "Inspect and maintain the local room list",
}

var roomsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the room list as JSON, most recent first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRooms(cmd.Context(), func(ctx context.Context, rooms service.RoomService) error {
			list, err := rooms.LoadRooms(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), list)
		})
	},
}

var roomsDeleteCmd = &cobra.Command{
	Use:   "delete <roomId>...",
	Short: "Delete one or more rooms together with their thread index entries",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRooms(cmd.Context(), func(ctx context.Context, rooms service.RoomService) error {
			if err := rooms.DeleteChatRooms(ctx, args); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d room(s)\n", len(args))
			return nil
		})
	},
}

var roomsResolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Resolve the canonical room id for an origin context",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var params map[string]any
		if err := json.Unmarshal([]byte(resolveParams), &params); err != nil {
			return fmt.Errorf("--params is not a JSON object: %w", err)
		}
		params = thread.WithSource(params, resolveSource)
		return withRooms(cmd.Context(), func(ctx context.Context, rooms service.RoomService) error {
			var (
				roomId string
				err    error
			)
			if resolveProposed != "" {
				roomId, err = rooms.ResolveRoomIdForOpen(ctx, params, resolveProposed)
			} else {
				roomId, err = rooms.FindExistingRoomIdByContext(ctx, params)
			}
			if err != nil {
				return err
			}
			if roomId == "" {
				return fmt.Errorf("no room matches the given context")
			}
			fmt.Fprintln(cmd.OutOrStdout(), roomId)
			return nil
		})
	},
}

func init() {
	roomsResolveCmd.Flags().StringVarP(&resolveParams, "params", "p", "",
		"Origin params as a JSON object, e.g. '{\"source\":\"market\",\"postId\":\"P1\"}'.")
	roomsResolveCmd.Flags().StringVar(&resolveSource, "source", "",
		"Board used when --params has no source field, e.g. market.")
	roomsResolveCmd.Flags().StringVar(&resolveProposed, "proposed", "",
		"Proposed room id returned when no canonical room exists.")
	_ = roomsResolveCmd.MarkFlagRequired("params")

	roomsCmd.AddCommand(roomsListCmd, roomsDeleteCmd, roomsResolveCmd)
}

// withRooms 打开存储并构造房间服务，CLI 不发布事件
func withRooms(ctx context.Context, fn func(ctx context.Context, rooms service.RoomService) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	conf := config.GetConfig()
	store, err := dao.OpenStore(ctx, conf)
	if err != nil {
		return err
	}
	defer store.Close()

	svc := service.NewServices(store, mq.Nop{}, nil, conf)
	return fn(ctx, svc.Room)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
