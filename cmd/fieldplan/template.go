package main

const configTemplate = `# Tournament Venue Configuration
# ==============================
# This file describes the venues of a tournament, the categories they host,
# and when each group can arrive. "fieldplan analyze" checks whether every
# venue has room for its matches; "fieldplan draw generate" builds the draw.

# Venues are the physical sites. A venue has one or more identical fields
# that can host matches at the same time.
venues:
  - id: north
    name: North Sports Park
    fields: 2

    # Schedule lists the tournament days and the windows in which the
    # fields are open. Times use 24-hour "HH:MM". A window whose end is
    # earlier than its start runs past midnight.
    schedule:
      - day: 1
        label: Saturday
        windows:
          - { start: "09:00", end: "13:00" }
          - { start: "14:00", end: "18:00" }
      - day: 2
        label: Sunday
        windows:
          - { start: "09:00", end: "14:00" }

    # Timing decides how long one match occupies a field:
    # part_minutes * parts + break_minutes * (parts - 1) + rotation_minutes
    timing:
      part_minutes: 20
      parts: 2
      break_minutes: 5
      rotation_minutes: 10

    # Format is shared by every category at this venue.
    #   group_size: 3 or 4 teams per group
    #   double_round_robin: every pairing plays twice
    #   consolation_bracket: add a consolation bracket to the knockout stage
    #   avoid_same_club: keep teams from the same club in different groups
    format:
      group_size: 4
      double_round_robin: false
      consolation_bracket: false
      avoid_same_club: true

    # Categories played at this venue. A venue with no hosted categories
    # is reported as having nothing to schedule.
    hosted_categories: [u12, u14]

# Categories are age or skill brackets. List the teams in registration
# order, or give only enrolled_teams while registration is still open.
categories:
  - id: u12
    name: Under 12
    teams:
      - { name: Falcons, club: Riverside }
      - { name: Hawks, club: Riverside }
      - { name: Owls, club: Lakeview }
      - { name: Ravens, club: Lakeview }
      - { name: Eagles, club: Hillcrest }
      - { name: Kites, club: Hillcrest }
      - { name: Herons, club: Meadow }
      - { name: Swifts, club: Meadow }
  - id: u14
    name: Under 14
    enrolled_teams: 6

# Arrival constraints flag matches that start before a group can be at the
# venue. Omit day to apply the constraint on every day.
arrival_constraints:
  - category: u14
    group: B
    earliest: "10:00"
    day: 1
`
