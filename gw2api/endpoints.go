package gw2api

import (
	"context"
	"encoding/json"
	"fmt"
)

// UseDefaultFloor selects the map's default floor in the map helpers.
const UseDefaultFloor = -1

// Coord is a continent coordinate pair.
type Coord [2]float64

// Rect is a pair of opposite corners.
type Rect [2]Coord

// Color is a dye.
type Color struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	BaseRGB [3]int `json:"base_rgb"`
}

// Continent is one entry of /continents.
type Continent struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	ContinentDims [2]int `json:"continent_dims"`
	MinZoom       int    `json:"min_zoom"`
	MaxZoom       int    `json:"max_zoom"`
	Floors        []int  `json:"floors"`
}

// Region is one region of a floor.
type Region struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	LabelCoord    Coord  `json:"label_coord"`
	ContinentRect Rect   `json:"continent_rect"`
}

// Map is the /maps/{id} summary.
type Map struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	MinLevel      int    `json:"min_level"`
	MaxLevel      int    `json:"max_level"`
	DefaultFloor  int    `json:"default_floor"`
	Type          string `json:"type"`
	Floors        []int  `json:"floors"`
	RegionID      int    `json:"region_id"`
	RegionName    string `json:"region_name"`
	ContinentID   int    `json:"continent_id"`
	ContinentName string `json:"continent_name"`
	MapRect       Rect   `json:"map_rect"`
	ContinentRect Rect   `json:"continent_rect"`
}

// POI is a point of interest, waypoint or vista.
type POI struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	Floor    int    `json:"floor"`
	Coord    Coord  `json:"coord"`
	ChatLink string `json:"chat_link"`
}

// Sector is a named area of a map.
type Sector struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	Level    int     `json:"level"`
	Coord    Coord   `json:"coord"`
	Bounds   []Coord `json:"bounds"`
	ChatLink string  `json:"chat_link"`
}

// Task is a renown heart.
type Task struct {
	ID        int     `json:"id"`
	Objective string  `json:"objective"`
	Level     int     `json:"level"`
	Coord     Coord   `json:"coord"`
	Bounds    []Coord `json:"bounds"`
	ChatLink  string  `json:"chat_link"`
}

// MapDetail merges the map summary with its floor entry.
type MapDetail struct {
	Map
	LabelCoord       Coord             `json:"label_coord"`
	PointsOfInterest map[string]POI    `json:"points_of_interest"`
	Tasks            map[string]Task   `json:"tasks"`
	Sectors          map[string]Sector `json:"sectors"`
}

func (c *Client) get(ctx context.Context, out any, format string, args ...any) error {
	return c.Get(ctx, fmt.Sprintf(format, args...), DefaultTTL, false, out)
}

func (c *Client) Colors(ctx context.Context) ([]int, error) {
	var ids []int
	err := c.get(ctx, &ids, "colors")
	return ids, err
}

func (c *Client) Color(ctx context.Context, id int) (Color, error) {
	var v Color
	err := c.get(ctx, &v, "colors/%d", id)
	return v, err
}

func (c *Client) Continents(ctx context.Context) ([]int, error) {
	var ids []int
	err := c.get(ctx, &ids, "continents")
	return ids, err
}

func (c *Client) Continent(ctx context.Context, id int) (Continent, error) {
	var v Continent
	err := c.get(ctx, &v, "continents/%d", id)
	return v, err
}

func (c *Client) Floors(ctx context.Context, continent int) ([]int, error) {
	var ids []int
	err := c.get(ctx, &ids, "continents/%d/floors", continent)
	return ids, err
}

// Floor is returned raw; a full floor is several megabytes of nested regions.
func (c *Client) Floor(ctx context.Context, continent, floor int) (json.RawMessage, error) {
	var v json.RawMessage
	err := c.get(ctx, &v, "continents/%d/floors/%d", continent, floor)
	return v, err
}

func (c *Client) Regions(ctx context.Context, continent, floor int) ([]int, error) {
	var ids []int
	err := c.get(ctx, &ids, "continents/%d/floors/%d/regions", continent, floor)
	return ids, err
}

func (c *Client) Region(ctx context.Context, continent, floor, region int) (Region, error) {
	var v Region
	err := c.get(ctx, &v, "continents/%d/floors/%d/regions/%d", continent, floor, region)
	return v, err
}

func (c *Client) RegionMaps(ctx context.Context, continent, floor, region int) ([]int, error) {
	var ids []int
	err := c.get(ctx, &ids, "continents/%d/floors/%d/regions/%d/maps", continent, floor, region)
	return ids, err
}

func (c *Client) Maps(ctx context.Context) ([]int, error) {
	var ids []int
	err := c.get(ctx, &ids, "maps")
	return ids, err
}

func (c *Client) Map(ctx context.Context, id int) (Map, error) {
	var v Map
	err := c.get(ctx, &v, "maps/%d", id)
	return v, err
}

// floorMapPath resolves the continent/floor/region path of a map. floor may
// be UseDefaultFloor.
func (c *Client) floorMapPath(ctx context.Context, mapID, floor int) (string, Map, error) {
	m, err := c.Map(ctx, mapID)
	if err != nil {
		return "", Map{}, err
	}
	if floor == UseDefaultFloor {
		floor = m.DefaultFloor
	}
	return fmt.Sprintf("continents/%d/floors/%d/regions/%d/maps/%d", m.ContinentID, floor, m.RegionID, mapID), m, nil
}

// MapVerbose returns the map summary overlaid with its floor entry.
func (c *Client) MapVerbose(ctx context.Context, mapID, floor int) (MapDetail, error) {
	path, m, err := c.floorMapPath(ctx, mapID, floor)
	if err != nil {
		return MapDetail{}, err
	}
	d := MapDetail{Map: m}
	err = c.get(ctx, &d, "%s", path)
	return d, err
}

func (c *Client) MapSectors(ctx context.Context, mapID, floor int) ([]int, error) {
	return c.floorList(ctx, mapID, floor, "sectors")
}

func (c *Client) MapSector(ctx context.Context, mapID, sector, floor int) (Sector, error) {
	var v Sector
	err := c.floorItem(ctx, mapID, floor, "sectors", sector, &v)
	return v, err
}

func (c *Client) MapPOIs(ctx context.Context, mapID, floor int) ([]int, error) {
	return c.floorList(ctx, mapID, floor, "pois")
}

func (c *Client) MapPOI(ctx context.Context, mapID, poi, floor int) (POI, error) {
	var v POI
	err := c.floorItem(ctx, mapID, floor, "pois", poi, &v)
	return v, err
}

func (c *Client) MapTasks(ctx context.Context, mapID, floor int) ([]int, error) {
	return c.floorList(ctx, mapID, floor, "tasks")
}

func (c *Client) MapTask(ctx context.Context, mapID, task, floor int) (Task, error) {
	var v Task
	err := c.floorItem(ctx, mapID, floor, "tasks", task, &v)
	return v, err
}

func (c *Client) floorList(ctx context.Context, mapID, floor int, kind string) ([]int, error) {
	path, _, err := c.floorMapPath(ctx, mapID, floor)
	if err != nil {
		return nil, err
	}
	var ids []int
	err = c.get(ctx, &ids, "%s/%s", path, kind)
	return ids, err
}

func (c *Client) floorItem(ctx context.Context, mapID, floor int, kind string, id int, out any) error {
	path, _, err := c.floorMapPath(ctx, mapID, floor)
	if err != nil {
		return err
	}
	return c.get(ctx, out, "%s/%s/%d", path, kind, id)
}
